package excelexport

import (
	"bytes"
	"io"
)

const (
	// FileExtension is the extension of every generated document.
	FileExtension = ".xlsx"
	// ContentType is the MIME type of every generated document.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document is a serialized workbook.
type Document struct {
	Data          []byte
	FileExtension string
}

// FileName returns base with the document extension appended.
func (d *Document) FileName(base string) string {
	return base + d.FileExtension
}

// ContentType returns the MIME type for HTTP responses.
func (d *Document) ContentType() string {
	return ContentType
}

// WriteTo writes the workbook bytes to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return bytes.NewReader(d.Data).WriteTo(w)
}
