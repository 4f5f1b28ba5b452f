package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	pngenc "image/png"
	"testing"
	"time"

	"github.com/locvowork/excel_exporter/internal/config"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/locvowork/excel_exporter/pkg/rowsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	rows     []*excelexport.Bag
	err      error
	failures int // calls failing with err before rows are returned
	calls    int
	query    rowsource.Query
}

func (f *fakeSource) Rows(_ context.Context, q rowsource.Query) ([]*excelexport.Bag, error) {
	f.query = q
	f.calls++
	if f.err != nil && (f.failures == 0 || f.calls <= f.failures) {
		return nil, f.err
	}
	return f.rows, nil
}

func open(t *testing.T, doc *excelexport.Document) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func newCatalog() *config.ReportCatalog {
	return &config.ReportCatalog{Reports: []config.Report{
		{ID: "orders", Title: "Orders", Worksheet: "Orders", Source: config.SourcePostgres, Query: "SELECT 1", Limit: 10},
		{ID: "tasks", Source: config.SourceDatastore, Kind: "Task"},
		{ID: "logs", Source: config.SourceElastic, Index: "logs"},
	}}
}

func TestExportWithTitle(t *testing.T) {
	src := &fakeSource{rows: []*excelexport.Bag{
		excelexport.NewBag().Set("id", int64(1)).Set("total", 9.5),
		excelexport.NewBag().Set("id", int64(2)).Set("total", 3.0),
	}}
	svc := NewReportService(newCatalog(), map[string]rowsource.Source{config.SourcePostgres: src})

	doc, err := svc.Export(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", src.query.Statement)
	assert.Equal(t, 10, src.query.Limit)

	f := open(t, doc)
	v, _ := f.GetCellValue("Orders", "A1")
	assert.Equal(t, "Orders", v)
	v, _ = f.GetCellValue("Orders", "B2")
	assert.Equal(t, "total", v)
	v, _ = f.GetCellValue("Orders", "A4")
	assert.Equal(t, "2", v)
}

func TestExportWithoutTitle(t *testing.T) {
	src := &fakeSource{rows: []*excelexport.Bag{excelexport.NewBag().Set("name", "a")}}
	svc := NewReportService(newCatalog(), map[string]rowsource.Source{config.SourceDatastore: src})

	doc, err := svc.Export(context.Background(), "tasks")
	require.NoError(t, err)
	assert.Equal(t, "Task", src.query.Kind)

	f := open(t, doc)
	v, _ := f.GetCellValue("tasks", "A1")
	assert.Equal(t, "name", v)
	v, _ = f.GetCellValue("tasks", "A2")
	assert.Equal(t, "a", v)
}

func TestExportEmptyRows(t *testing.T) {
	svc := NewReportService(newCatalog(), map[string]rowsource.Source{config.SourcePostgres: &fakeSource{}})

	doc, err := svc.Export(context.Background(), "orders")
	require.NoError(t, err)

	f := open(t, doc)
	v, _ := f.GetCellValue(excelexport.PlaceholderWorksheet, "A1")
	assert.Equal(t, excelexport.PlaceholderText, v)
}

func TestExportErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewReportService(newCatalog(), map[string]rowsource.Source{
		config.SourceElastic: &fakeSource{err: boom},
	})
	ctx := context.Background()

	_, err := svc.Export(ctx, "nope")
	assert.ErrorIs(t, err, ErrReportNotFound)

	_, err = svc.Export(ctx, "tasks")
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = svc.Export(ctx, "logs")
	assert.ErrorIs(t, err, boom)
}

func TestListAndExportRows(t *testing.T) {
	svc := NewReportService(nil, nil)
	assert.Empty(t, svc.List())

	svc = NewReportService(newCatalog(), nil)
	reports := svc.List()
	require.Len(t, reports, 3)
	reports[0].ID = "changed"
	assert.Equal(t, "orders", svc.List()[0].ID)

	doc, err := svc.ExportRows(context.Background(), "Posted", []*excelexport.Bag{excelexport.NewBag().Set("k", "v")})
	require.NoError(t, err)
	f := open(t, doc)
	v, _ := f.GetCellValue("Posted", "A2")
	assert.Equal(t, "v", v)
}

func TestExportRetriesSource(t *testing.T) {
	unavailable := errors.New("connection refused")
	rows := []*excelexport.Bag{excelexport.NewBag().Set("id", int64(1))}
	ctx := context.Background()

	flaky := &fakeSource{rows: rows, err: unavailable, failures: 2}
	svc := NewReportService(newCatalog(), map[string]rowsource.Source{config.SourcePostgres: flaky},
		WithSourceRetry(2, time.Millisecond))
	doc, err := svc.Export(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)
	assert.NotEmpty(t, doc.Data)

	down := &fakeSource{err: unavailable}
	svc = NewReportService(newCatalog(), map[string]rowsource.Source{config.SourcePostgres: down},
		WithSourceRetry(1, time.Millisecond))
	_, err = svc.Export(ctx, "orders")
	assert.ErrorIs(t, err, unavailable)
	assert.Equal(t, 2, down.calls)

	once := &fakeSource{err: unavailable}
	svc = NewReportService(newCatalog(), map[string]rowsource.Source{config.SourcePostgres: once})
	_, err = svc.Export(ctx, "orders")
	assert.ErrorIs(t, err, unavailable)
	assert.Equal(t, 1, once.calls)
}

func TestExportOptions(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, pngenc.Encode(&png, image.NewRGBA(image.Rect(0, 0, 20, 10))))

	svc := NewReportService(nil, nil, WithExportOptions(excelexport.WithImageBound(40)))
	doc, err := svc.ExportRows(context.Background(), "Pics", []*excelexport.Bag{
		excelexport.NewBag().Set("name", "dot").Set("pic", excelexport.Image(png.Bytes())),
	})
	require.NoError(t, err)

	f := open(t, doc)
	width, err := f.GetColWidth("Pics", "C")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
	height, err := f.GetRowHeight("Pics", 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, height)
}
