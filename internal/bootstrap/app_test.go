package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/locvowork/excel_exporter/internal/handler"
	"github.com/locvowork/excel_exporter/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	app := NewApp()
	app.RegisterRoutes(handler.NewExportHandler(service.NewReportService(nil, nil)))

	var got []string
	for _, r := range app.Echo.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"GET /export/sample",
		"GET /reports",
		"GET /reports/:id/export",
		"POST /export",
	}, got)

	req := httptest.NewRequest(http.MethodGet, "/reports/unknown/export", nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
