package excelexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openDocument(t *testing.T, doc *Document) *excelize.File {
	t.Helper()
	require.NotNil(t, doc)
	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func rowValues(t *testing.T, f *excelize.File, sheet string, row, cols int) []string {
	t.Helper()
	out := make([]string, cols)
	for c := 1; c <= cols; c++ {
		cell, err := excelize.CoordinatesToCellName(c, row)
		require.NoError(t, err)
		out[c-1], err = f.GetCellValue(sheet, cell)
		require.NoError(t, err)
	}
	return out
}
