package excelexport

// ExtractFunc resolves the cell content of one column for a row.
type ExtractFunc[T any] func(row T) (CellData, error)

// Column pairs a header label with the extractor producing its cells.
//
// Extract may be nil when rows are dynamic bags; the cell is then looked up
// by Header.
type Column[T any] struct {
	Header  string
	Extract ExtractFunc[T]
}

// NewColumn builds a column from an extractor that cannot fail.
func NewColumn[T any](header string, fn func(row T) CellData) Column[T] {
	return Column[T]{
		Header: header,
		Extract: func(row T) (CellData, error) {
			return fn(row), nil
		},
	}
}

// ValueColumn builds a column rendering the returned value as a plain cell.
func ValueColumn[T any](header string, fn func(row T) interface{}) Column[T] {
	return NewColumn(header, func(row T) CellData {
		return Plain(fn(row))
	})
}

// WorksheetDefinition describes one worksheet of a multi-sheet workbook.
type WorksheetDefinition[T any] struct {
	Name    string
	Columns []Column[T]
	Rows    []T
}
