package rowsource

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/excel_exporter/pkg/excelexport"
)

// SQL runs statements against a database/sql handle.
type SQL struct {
	db *sql.DB
}

// NewSQL returns a SQL source backed by db.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Rows runs q.Statement and returns one bag per row, keyed by column name in
// select-list order. At most q.Limit rows are read when Limit > 0.
func (s *SQL) Rows(ctx context.Context, q Query) ([]*excelexport.Bag, error) {
	if q.Statement == "" {
		return nil, fmt.Errorf("sql source: empty statement")
	}
	rows, err := s.db.QueryContext(ctx, q.Statement)
	if err != nil {
		return nil, fmt.Errorf("sql source: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql source: columns: %w", err)
	}

	var bags []*excelexport.Bag
	for rows.Next() {
		if q.Limit > 0 && len(bags) >= q.Limit {
			break
		}
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sql source: scan: %w", err)
		}
		bags = append(bags, bagFromRow(cols, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql source: %w", err)
	}
	return bags, nil
}

// bagFromRow pairs column names with scanned values. Drivers hand text and
// numeric columns back as []byte; those become strings.
func bagFromRow(cols []string, values []interface{}) *excelexport.Bag {
	bag := excelexport.NewBag()
	for i, col := range cols {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		bag.Set(col, v)
	}
	return bag
}
