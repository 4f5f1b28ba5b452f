// Package rowsource loads rows from external stores as dynamic bags ready
// for inferred export.
package rowsource

import (
	"context"

	"github.com/locvowork/excel_exporter/pkg/excelexport"
)

// Query selects the rows of one export. Which fields apply depends on the
// source: Statement for SQL and Elasticsearch, Kind for Datastore, Index for
// Elasticsearch.
type Query struct {
	Statement string
	Kind      string
	Index     string
	OrderBy   string
	Limit     int
}

// Source loads rows. Every returned bag of one call has the same keys in the
// same order.
type Source interface {
	Rows(ctx context.Context, q Query) ([]*excelexport.Bag, error)
}
