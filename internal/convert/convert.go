// Package convert turns JSON row files into spreadsheet documents.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/locvowork/excel_exporter/internal/logger"
	"github.com/locvowork/excel_exporter/pkg/batch"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
)

// Options controls a conversion run.
type Options struct {
	OutDir    string
	Worksheet string // Defaults to the input file's base name
	Workers   int
	Retries   int // Extra attempts per file after a failure
	Export    []excelexport.Option
}

const retryWait = 250 * time.Millisecond

// Result reports one converted file.
type Result struct {
	Input  string
	Output string
	Rows   int
}

// Files converts every input (a JSON array of objects) to <base>.xlsx under
// opts.OutDir. Files are independent and run in parallel; the first failure
// stops the rest.
func Files(ctx context.Context, inputs []string, opts Options) ([]Result, error) {
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return batch.Run(ctx, inputs, func(ctx context.Context, input string) (Result, error) {
		return file(ctx, input, opts)
	}, batch.WithWorkers(opts.Workers), batch.WithRetry(opts.Retries, batch.ConstantBackoff(retryWait)))
}

func file(ctx context.Context, input string, opts Options) (Result, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", input, err)
	}
	rows, err := excelexport.DecodeBags(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", input, err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	worksheet := opts.Worksheet
	if worksheet == "" {
		worksheet = base
	}

	doc, err := excelexport.GenerateInferred(worksheet, rows, opts.Export...)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", input, err)
	}

	out := filepath.Join(opts.OutDir, doc.FileName(base))
	if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", out, err)
	}
	logger.DebugLog(ctx, "converted %s (%d rows) to %s", input, len(rows), out)
	return Result{Input: input, Output: out, Rows: len(rows)}, nil
}
