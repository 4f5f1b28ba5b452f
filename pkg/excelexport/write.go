package excelexport

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	linkColor        = "0F6CC7"
	labelFillColor   = "000000"
	labelFontColor   = "FFFFFF"
	bannerFillColor  = "FFFFFF"
	bannerFontSize   = 16
	dateTimeNumFmtID = 22
)

// styleKey identifies a cell style; equal keys share one style ID.
type styleKey struct {
	numFmt string
	wrap   bool
	link   bool
	date   bool
	label  bool
	banner bool
}

func (k styleKey) isZero() bool {
	return k == styleKey{}
}

func (wb *workbook) style(k styleKey) (int, error) {
	if id, ok := wb.styles[k]; ok {
		return id, nil
	}

	s := &excelize.Style{}
	switch {
	case k.label:
		s.Font = &excelize.Font{Bold: true, Color: labelFontColor}
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{labelFillColor}, Pattern: 1}
	case k.banner:
		s.Font = &excelize.Font{Bold: true, Size: bannerFontSize}
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{bannerFillColor}, Pattern: 1}
	}
	if k.numFmt != "" {
		numFmt := k.numFmt
		s.CustomNumFmt = &numFmt
	} else if k.date {
		s.NumFmt = dateTimeNumFmtID
	}
	if k.wrap {
		s.Alignment = &excelize.Alignment{WrapText: true}
	}
	if k.link {
		s.Font = &excelize.Font{Color: linkColor, Underline: "single"}
	}

	id, err := wb.file.NewStyle(s)
	if err != nil {
		return 0, err
	}
	wb.styles[k] = id
	return id, nil
}

// writeBanner writes the header text into the first cell of row and merges
// it across the label columns.
func (wb *workbook) writeBanner(sheet, text string, row, startColumn, columns int) error {
	first, err := excelize.CoordinatesToCellName(startColumn, row)
	if err != nil {
		return newGenerationError(sheet, "header", err)
	}
	last := first
	if columns > 1 {
		if last, err = excelize.CoordinatesToCellName(startColumn+columns-1, row); err != nil {
			return newGenerationError(sheet, "header", err)
		}
	}
	if err := wb.file.SetCellValue(sheet, first, text); err != nil {
		return newGenerationError(sheet, "header", err)
	}
	if last != first {
		if err := wb.file.MergeCell(sheet, first, last); err != nil {
			return newGenerationError(sheet, "header", err)
		}
	}
	id, err := wb.style(styleKey{banner: true})
	if err != nil {
		return newGenerationError(sheet, "header", err)
	}
	if err := wb.file.SetCellStyle(sheet, first, last, id); err != nil {
		return newGenerationError(sheet, "header", err)
	}
	return nil
}

// writeLabels writes the column labels on row and styles the label range.
func (wb *workbook) writeLabels(sheet string, labels []string, row, startColumn int) error {
	if len(labels) == 0 {
		return nil
	}
	for i, label := range labels {
		cell, err := excelize.CoordinatesToCellName(startColumn+i, row)
		if err != nil {
			return newGenerationError(sheet, "labels", err)
		}
		if err := wb.file.SetCellValue(sheet, cell, label); err != nil {
			return newGenerationError(sheet, "labels", err)
		}
		wb.measure(sheet, startColumn+i, label, true)
	}

	first, _ := excelize.CoordinatesToCellName(startColumn, row)
	last, _ := excelize.CoordinatesToCellName(startColumn+len(labels)-1, row)
	id, err := wb.style(styleKey{label: true})
	if err != nil {
		return newGenerationError(sheet, "labels", err)
	}
	if err := wb.file.SetCellStyle(sheet, first, last, id); err != nil {
		return newGenerationError(sheet, "labels", err)
	}
	return nil
}

// writeCell applies a plain CellData to (row, col). A nil value leaves the
// cell untouched.
func (wb *workbook) writeCell(sheet string, row, col int, data CellData) error {
	if isNil(data.Value) {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := wb.file.SetCellValue(sheet, cell, data.Value); err != nil {
		return err
	}

	key := styleKey{
		numFmt: strings.TrimSpace(data.NumberFormat),
		wrap:   data.WrapText,
		link:   data.Hyperlink != "",
	}
	if data.Hyperlink != "" {
		link, linkType := data.Hyperlink, "External"
		if strings.HasPrefix(link, "#") {
			link, linkType = strings.TrimPrefix(link, "#"), "Location"
		}
		if err := wb.file.SetCellHyperLink(sheet, cell, link, linkType); err != nil {
			return err
		}
	}
	if !key.isZero() {
		// SetCellValue gives time values a date format; keep it when restyling.
		_, key.date = data.Value.(time.Time)
		id, err := wb.style(key)
		if err != nil {
			return err
		}
		if err := wb.file.SetCellStyle(sheet, cell, cell, id); err != nil {
			return err
		}
	}
	wb.measure(sheet, col, data.Value, false)
	return nil
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// displayText approximates how a cell value is shown, for width estimates.
func displayText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format("1/2/06 15:04")
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}
