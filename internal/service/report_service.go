package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/locvowork/excel_exporter/internal/config"
	"github.com/locvowork/excel_exporter/internal/logger"
	"github.com/locvowork/excel_exporter/pkg/batch"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/locvowork/excel_exporter/pkg/rowsource"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrSourceUnavailable = errors.New("report source is not configured")
)

type ReportService interface {
	List() []config.Report
	Export(ctx context.Context, id string) (*excelexport.Document, error)
	ExportRows(ctx context.Context, worksheet string, rows []*excelexport.Bag) (*excelexport.Document, error)
}

type reportService struct {
	catalog *config.ReportCatalog
	sources map[string]rowsource.Source
	opts    []excelexport.Option
	retry   []batch.Option
}

// Option configures a ReportService.
type Option func(*reportService)

// WithExportOptions sets the options of every generated document.
func WithExportOptions(opts ...excelexport.Option) Option {
	return func(s *reportService) {
		s.opts = append(s.opts, opts...)
	}
}

// WithSourceRetry retries a failed row load up to retries more times, with
// exponential backoff starting at backoff and capped at maxRetryBackoff.
func WithSourceRetry(retries int, backoff time.Duration) Option {
	return func(s *reportService) {
		s.retry = []batch.Option{batch.WithRetry(retries, batch.ExponentialBackoff(backoff, maxRetryBackoff))}
	}
}

const maxRetryBackoff = 5 * time.Second

// NewReportService serves the reports of catalog from the given sources,
// keyed by source name. Reports whose source is missing fail on export.
func NewReportService(catalog *config.ReportCatalog, sources map[string]rowsource.Source, opts ...Option) ReportService {
	if catalog == nil {
		catalog = &config.ReportCatalog{}
	}
	s := &reportService{catalog: catalog, sources: sources}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reportService) List() []config.Report {
	out := make([]config.Report, len(s.catalog.Reports))
	copy(out, s.catalog.Reports)
	return out
}

func (s *reportService) Export(ctx context.Context, id string) (*excelexport.Document, error) {
	report, ok := s.catalog.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	src, ok := s.sources[report.Source]
	if !ok || src == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, report.Source)
	}

	query := rowsource.Query{
		Statement: report.Query,
		Kind:      report.Kind,
		Index:     report.Index,
		OrderBy:   report.OrderBy,
		Limit:     report.Limit,
	}
	attempts := 0
	rows, err := batch.Do(ctx, func(ctx context.Context) ([]*excelexport.Bag, error) {
		attempts++
		if attempts > 1 {
			logger.WarnLog(ctx, "retrying %s rows for report %s (attempt %d)", report.Source, id, attempts)
		}
		return src.Rows(ctx, query)
	}, s.retry...)
	if err != nil {
		return nil, fmt.Errorf("load rows for %s: %w", id, err)
	}
	logger.InfoLog(ctx, "exporting report %s: %d rows from %s", id, len(rows), report.Source)

	worksheet := report.WorksheetName()
	if report.Title == "" || len(rows) == 0 {
		return excelexport.GenerateInferred(worksheet, rows, s.opts...)
	}

	columns, err := excelexport.InferColumns(rows, s.opts...)
	if err != nil {
		return nil, err
	}
	return excelexport.GenerateSingle(worksheet, columns, rows, report.Title, s.opts...)
}

func (s *reportService) ExportRows(ctx context.Context, worksheet string, rows []*excelexport.Bag) (*excelexport.Document, error) {
	logger.DebugLog(ctx, "exporting %d posted rows to %s", len(rows), worksheet)
	return excelexport.GenerateInferred(worksheet, rows, s.opts...)
}
