package googlecloud

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
)

// ErrNotFound is returned when a queried kind has no entity.
var ErrNotFound = errors.New("entity not found")

// Client wraps the Google Cloud Datastore client for read-only exports.
type Client struct {
	ds *datastore.Client
}

// Entity is one Datastore entity with its properties in stored order.
type Entity struct {
	Key        *datastore.Key
	Properties datastore.PropertyList
}

// NewClient creates a new Google Cloud Datastore client.
// The official client detects DATASTORE_EMULATOR_HOST automatically.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		fmt.Printf("Initializing Datastore Client against Emulator at %s\n", emulatorHost)
	}

	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}

	return &Client{ds: ds}, nil
}

// Close closes the underlying datastore client.
func (c *Client) Close() error {
	return c.ds.Close()
}

// QueryEntities returns up to limit entities of kind (all when limit <= 0),
// ordered by orderBy when set ("-field" for descending).
func (c *Client) QueryEntities(ctx context.Context, kind, orderBy string, limit int) ([]Entity, error) {
	query := datastore.NewQuery(kind)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var props []datastore.PropertyList
	keys, err := c.ds.GetAll(ctx, query, &props)
	if err != nil {
		return nil, WrapDatastoreError(err)
	}

	entities := make([]Entity, len(keys))
	for i, key := range keys {
		entities[i] = Entity{Key: key, Properties: props[i]}
	}
	return entities, nil
}

// WrapDatastoreError converts Datastore-specific errors to domain errors.
func WrapDatastoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return ErrNotFound
	}
	return err
}
