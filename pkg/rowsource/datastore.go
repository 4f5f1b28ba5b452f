package rowsource

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/locvowork/excel_exporter/pkg/googlecloud"
)

// KeyColumn holds the entity key of Datastore rows.
const KeyColumn = "__key__"

type entityQuerier interface {
	QueryEntities(ctx context.Context, kind, orderBy string, limit int) ([]googlecloud.Entity, error)
}

// Datastore reads entities of one kind.
type Datastore struct {
	client entityQuerier
}

// NewDatastore returns a Datastore source backed by client.
func NewDatastore(client *googlecloud.Client) *Datastore {
	return &Datastore{client: client}
}

// Rows returns one bag per entity of q.Kind. The key comes first, followed
// by the union of property names in first-seen order; an entity lacking a
// property holds nil for it.
func (d *Datastore) Rows(ctx context.Context, q Query) ([]*excelexport.Bag, error) {
	if q.Kind == "" {
		return nil, fmt.Errorf("datastore source: empty kind")
	}
	entities, err := d.client.QueryEntities(ctx, q.Kind, q.OrderBy, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("datastore source: %w", err)
	}
	return entitiesToBags(entities), nil
}

func entitiesToBags(entities []googlecloud.Entity) []*excelexport.Bag {
	var names []string
	seen := make(map[string]bool)
	for _, e := range entities {
		for _, p := range e.Properties {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}

	bags := make([]*excelexport.Bag, len(entities))
	for i, e := range entities {
		values := make(map[string]interface{}, len(e.Properties))
		for _, p := range e.Properties {
			values[p.Name] = propertyValue(p.Value)
		}
		bag := excelexport.NewBag().Set(KeyColumn, keyLabel(e.Key))
		for _, name := range names {
			bag.Set(name, values[name])
		}
		bags[i] = bag
	}
	return bags
}

func keyLabel(k *datastore.Key) interface{} {
	if k == nil {
		return nil
	}
	if k.Name != "" {
		return k.Name
	}
	return strconv.FormatInt(k.ID, 10)
}

func propertyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *datastore.Key:
		return keyLabel(t)
	case datastore.GeoPoint:
		return fmt.Sprintf("%g,%g", t.Lat, t.Lng)
	}
	return v
}
