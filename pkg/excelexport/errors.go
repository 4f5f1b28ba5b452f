package excelexport

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when a dynamic row has no entry for a column header.
	ErrMissingKey = errors.New("missing key in dynamic row")
	// ErrImageDecode is returned when image bytes cannot be decoded.
	ErrImageDecode = errors.New("cannot decode image")
	// ErrNilRow is returned when a nil pointer row is read by an inferred column.
	ErrNilRow = errors.New("nil row")
	// ErrNoWorksheets is returned when a multi-sheet export has no definitions.
	ErrNoWorksheets = errors.New("no worksheet definitions")
	// ErrDuplicateWorksheet is returned when two worksheets share a name.
	ErrDuplicateWorksheet = errors.New("duplicate worksheet name")
)

// GenerationError reports where a generation call failed.
// Row and Column are 1-based sheet coordinates, zero when not applicable.
type GenerationError struct {
	Worksheet string
	Row       int
	Column    int
	Op        string // "sheet", "header", "labels", "extract", "write", "image", "layout", "save"
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("excel generation error in sheet %q at R%dC%d (%s): %v", e.Worksheet, e.Row, e.Column, e.Op, e.Err)
	}
	return fmt.Sprintf("excel generation error in sheet %q (%s): %v", e.Worksheet, e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(sheet, op string, err error) *GenerationError {
	return &GenerationError{Worksheet: sheet, Op: op, Err: err}
}

func newCellError(sheet, op string, row, col int, err error) *GenerationError {
	return &GenerationError{Worksheet: sheet, Row: row, Column: col, Op: op, Err: err}
}
