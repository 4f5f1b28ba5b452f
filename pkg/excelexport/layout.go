package excelexport

import (
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

const (
	widthPadding = 2
	boldFactor   = 1.1
)

// textWidth counts character units of the widest line of s; East Asian wide
// and fullwidth runes take two units.
func textWidth(s string) float64 {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		n := 0
		for _, r := range line {
			switch width.LookupRune(r).Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				n += 2
			default:
				n++
			}
		}
		if n > widest {
			widest = n
		}
	}
	return float64(widest)
}

// measure records the width needed by a value written in col.
func (wb *workbook) measure(sheet string, col int, v interface{}, bold bool) {
	w := textWidth(displayText(v))
	if bold {
		w *= boldFactor
	}
	w += widthPadding
	if w > excelize.MaxColumnWidth {
		w = excelize.MaxColumnWidth
	}
	cols := wb.widths[sheet]
	if cols == nil {
		return
	}
	if w > cols[col] {
		cols[col] = w
	}
}

// autoFit sizes every measured column of sheet to its widest value.
func (wb *workbook) autoFit(sheet string) error {
	for col, w := range wb.widths[sheet] {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return newGenerationError(sheet, "layout", err)
		}
		if err := wb.file.SetColWidth(sheet, name, name, w); err != nil {
			return newGenerationError(sheet, "layout", err)
		}
	}
	return nil
}
