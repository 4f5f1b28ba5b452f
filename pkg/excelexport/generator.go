package excelexport

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GenerateSingle renders rows into a one-worksheet document.
//
// A non-nil header is written as a merged, bold banner above the column
// labels; its text is fmt.Sprint(header).
func GenerateSingle[T any](worksheetName string, columns []Column[T], rows []T, header interface{}, opts ...Option) (*Document, error) {
	wb := newWorkbook(applyOptions(opts))
	defer wb.close()

	if err := renderWorksheet(wb, worksheetName, columns, rows, header); err != nil {
		return nil, err
	}
	return wb.save()
}

// GenerateMulti renders each definition into its own worksheet, in order.
// Worksheets have no banner and start at A1.
func GenerateMulti[T any](definitions []WorksheetDefinition[T], opts ...Option) (*Document, error) {
	if len(definitions) == 0 {
		return nil, newGenerationError("", "sheet", ErrNoWorksheets)
	}
	wb := newWorkbook(applyOptions(opts))
	defer wb.close()

	for _, def := range definitions {
		if err := renderWorksheet(wb, def.Name, def.Columns, def.Rows, nil); err != nil {
			return nil, err
		}
	}
	return wb.save()
}

// GenerateInferred renders rows with columns derived by InferColumns.
// Empty input yields the placeholder document: a worksheet named "data"
// whose A1 reads "No data found".
func GenerateInferred[T any](worksheetName string, rows []T, opts ...Option) (*Document, error) {
	cfg := applyOptions(opts)
	if len(rows) == 0 {
		cfg.logger.Debug().Str("worksheet", worksheetName).Msg("no rows, emitting placeholder document")
		return placeholderDocument(cfg)
	}

	columns, err := InferColumns(rows, opts...)
	if err != nil {
		return nil, newGenerationError(worksheetName, "infer", err)
	}

	wb := newWorkbook(cfg)
	defer wb.close()
	if err := renderWorksheet(wb, worksheetName, columns, rows, nil); err != nil {
		return nil, err
	}
	return wb.save()
}

func placeholderDocument(cfg *config) (*Document, error) {
	wb := newWorkbook(cfg)
	defer wb.close()

	if err := wb.addSheet(PlaceholderWorksheet); err != nil {
		return nil, err
	}
	if err := wb.file.SetCellValue(PlaceholderWorksheet, "A1", PlaceholderText); err != nil {
		return nil, newGenerationError(PlaceholderWorksheet, "write", err)
	}
	wb.measure(PlaceholderWorksheet, 1, PlaceholderText, false)
	if err := wb.autoFit(PlaceholderWorksheet); err != nil {
		return nil, err
	}
	return wb.save()
}

// renderWorksheet adds one worksheet: optional banner, label row, data rows,
// then column auto-sizing.
func renderWorksheet[T any](wb *workbook, name string, columns []Column[T], rows []T, header interface{}) error {
	const startColumn = 1

	wb.cfg.logger.Debug().
		Str("worksheet", name).
		Int("columns", len(columns)).
		Int("rows", len(rows)).
		Bool("header", header != nil).
		Msg("rendering worksheet")

	if err := wb.addSheet(name); err != nil {
		return err
	}

	startRow := 1
	if header != nil {
		if err := wb.writeBanner(name, fmt.Sprint(header), startRow, startColumn, len(columns)); err != nil {
			return err
		}
		startRow++
	}

	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = col.Header
	}
	if err := wb.writeLabels(name, labels, startRow, startColumn); err != nil {
		return err
	}

	if err := populate(wb, name, columns, rows, startRow+1, startColumn); err != nil {
		return err
	}
	return wb.autoFit(name)
}

// populate writes rows starting at (startRow, startColumn). Image cells are
// embedded one column past the last data column on the cell's row.
func populate[T any](wb *workbook, sheet string, columns []Column[T], rows []T, startRow, startColumn int) error {
	access := selectAccessor(rows)
	imageColumn := startColumn + len(columns)

	for i, row := range rows {
		r := startRow + i
		for c, col := range columns {
			cellCol := startColumn + c
			data, err := access.cell(row, col)
			if err != nil {
				return newCellError(sheet, "extract", r, cellCol, err)
			}
			if data.Kind == CellImage {
				if err := wb.embedImage(sheet, data.imageBytes(), r, imageColumn); err != nil {
					return newCellError(sheet, "image", r, cellCol, err)
				}
				continue
			}
			if err := wb.writeCell(sheet, r, cellCol, data); err != nil {
				return newCellError(sheet, "write", r, cellCol, err)
			}
		}
	}
	wb.cfg.logger.Debug().Str("worksheet", sheet).Int("rows", len(rows)).Msg("rows written")
	return nil
}

// rowAccessor resolves the cell of one column for a row.
type rowAccessor[T any] interface {
	cell(row T, col Column[T]) (CellData, error)
}

// extractorAccessor resolves cells through column extractors.
type extractorAccessor[T any] struct{}

func (extractorAccessor[T]) cell(row T, col Column[T]) (CellData, error) {
	if col.Extract == nil {
		return CellData{}, fmt.Errorf("column %q has no extractor", col.Header)
	}
	return col.Extract(row)
}

// dynamicAccessor resolves cells by looking up the column header in a
// dynamic row.
type dynamicAccessor[T any] struct{}

func (dynamicAccessor[T]) cell(row T, col Column[T]) (CellData, error) {
	dr, ok := asDynamic(interface{}(row))
	if !ok {
		return CellData{}, fmt.Errorf("row of type %T is not a dynamic row", row)
	}
	v, ok := dr.Lookup(col.Header)
	if !ok {
		return CellData{}, fmt.Errorf("%w: %q", ErrMissingKey, col.Header)
	}
	return cellFromValue(v), nil
}

// selectAccessor picks the accessor for a worksheet from its first row.
func selectAccessor[T any](rows []T) rowAccessor[T] {
	if len(rows) > 0 {
		if _, ok := asDynamic(interface{}(rows[0])); ok {
			return dynamicAccessor[T]{}
		}
	}
	return extractorAccessor[T]{}
}

// cellFromValue wraps a dynamic value; CellData values pass through.
func cellFromValue(v interface{}) CellData {
	switch cd := v.(type) {
	case CellData:
		return cd
	case *CellData:
		if cd != nil {
			return *cd
		}
		return Plain(nil)
	}
	return Plain(v)
}

// workbook is the in-progress document of one generation call.
type workbook struct {
	cfg    *config
	file   *excelize.File
	sheets map[string]bool // lower-cased names
	styles map[styleKey]int
	widths map[string]map[int]float64
}

func newWorkbook(cfg *config) *workbook {
	return &workbook{
		cfg:    cfg,
		file:   excelize.NewFile(),
		sheets: make(map[string]bool),
		styles: make(map[styleKey]int),
		widths: make(map[string]map[int]float64),
	}
}

// addSheet creates a worksheet; the first one replaces the default "Sheet1".
// Names are unique without regard to case, as in the document format.
func (wb *workbook) addSheet(name string) error {
	if wb.sheets[strings.ToLower(name)] {
		return newGenerationError(name, "sheet", fmt.Errorf("%w: %q", ErrDuplicateWorksheet, name))
	}
	if len(wb.sheets) == 0 {
		if name != "Sheet1" {
			if err := wb.file.SetSheetName("Sheet1", name); err != nil {
				return newGenerationError(name, "sheet", err)
			}
		}
	} else if _, err := wb.file.NewSheet(name); err != nil {
		return newGenerationError(name, "sheet", err)
	}
	wb.sheets[strings.ToLower(name)] = true
	wb.widths[name] = make(map[int]float64)
	return nil
}

func (wb *workbook) save() (*Document, error) {
	buf, err := wb.file.WriteToBuffer()
	if err != nil {
		return nil, newGenerationError("", "save", err)
	}
	return &Document{Data: buf.Bytes(), FileExtension: FileExtension}, nil
}

func (wb *workbook) close() {
	_ = wb.file.Close()
}
