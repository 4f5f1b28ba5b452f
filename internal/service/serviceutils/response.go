package serviceutils

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
)

type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Cell    *CellRef    `json:"cell,omitempty"`
}

// CellRef locates a generation failure in the document being built.
// Row and Column are 1-based; zero means not applicable.
type CellRef struct {
	Worksheet string `json:"worksheet,omitempty"`
	Row       int    `json:"row,omitempty"`
	Column    int    `json:"column,omitempty"`
}

func ResponseSuccess(c echo.Context, code int, msg string, data interface{}) error {
	return c.JSON(code, GenericResponse{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func ResponseError(c echo.Context, code int, msg string, err error) error {
	resp := GenericResponse{
		Success: false,
		Message: msg,
	}
	if err != nil {
		resp.Error = err.Error()
		var genErr *excelexport.GenerationError
		if errors.As(err, &genErr) {
			resp.Cell = &CellRef{Worksheet: genErr.Worksheet, Row: genErr.Row, Column: genErr.Column}
		}
	}
	return c.JSON(code, resp)
}
