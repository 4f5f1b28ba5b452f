package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/excel_exporter/internal/logger"
	"github.com/locvowork/excel_exporter/internal/service"
	"github.com/locvowork/excel_exporter/internal/service/serviceutils"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
)

const maxUploadBytes = 32 << 20

// Item is the typed row of the sample export.
type Item struct {
	Id   int
	Name string
	Date time.Time
}

type ExportHandler struct {
	svc  service.ReportService
	opts []excelexport.Option
	now  func() time.Time
}

func NewExportHandler(svc service.ReportService, opts ...excelexport.Option) *ExportHandler {
	return &ExportHandler{svc: svc, opts: opts, now: time.Now}
}

// SampleHandler exports a fixed list of items with inferred columns.
func (h *ExportHandler) SampleHandler(c echo.Context) error {
	today := h.now()
	items := []Item{
		{Id: 1, Name: "Widget", Date: today},
		{Id: 2, Name: "Gadget", Date: today.AddDate(0, 0, -1)},
		{Id: 3, Name: "Gizmo", Date: today.AddDate(0, 0, -2)},
	}
	doc, err := excelexport.GenerateInferred("Items", items, h.opts...)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate Excel file", err)
	}
	return writeDocument(c, doc, "sample-"+today.Format("02.01.2006"))
}

// InferHandler exports a posted JSON array of objects with inferred columns.
func (h *ExportHandler) InferHandler(c echo.Context) error {
	worksheet := c.QueryParam("worksheet")
	if worksheet == "" {
		worksheet = "Sheet1"
	}
	filename := c.QueryParam("filename")
	if filename == "" {
		filename = "export"
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to read request body", err)
	}
	rows, err := excelexport.DecodeBags(body)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Request body must be a JSON array of objects", err)
	}

	doc, err := h.svc.ExportRows(c.Request().Context(), worksheet, rows)
	if err != nil {
		return h.exportError(c, err)
	}
	return writeDocument(c, doc, filename)
}

func (h *ExportHandler) ListReportsHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Reports retrieved", h.svc.List())
}

func (h *ExportHandler) ReportHandler(c echo.Context) error {
	id := c.Param("id")
	doc, err := h.svc.Export(c.Request().Context(), id)
	if err != nil {
		return h.exportError(c, err)
	}
	return writeDocument(c, doc, id)
}

func (h *ExportHandler) exportError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	var genErr *excelexport.GenerationError
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		return serviceutils.ResponseError(c, http.StatusNotFound, "Report not found", err)
	case errors.Is(err, service.ErrSourceUnavailable):
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Report source unavailable", err)
	case errors.As(err, &genErr):
		logger.ErrorLog(ctx, "generation failed: %v", err)
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Failed to generate Excel file", err)
	default:
		logger.ErrorLog(ctx, "export failed: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to export report", err)
	}
}

func writeDocument(c echo.Context, doc *excelexport.Document, base string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.FileName(base)+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(doc.Data)))
	return c.Blob(http.StatusOK, doc.ContentType(), doc.Data)
}
