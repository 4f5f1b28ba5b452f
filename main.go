package main

import (
	"context"
	"fmt"
	"os"

	"github.com/locvowork/excel_exporter/internal/bootstrap"
	"github.com/locvowork/excel_exporter/internal/convert"
	"github.com/locvowork/excel_exporter/internal/logger"
	"github.com/locvowork/excel_exporter/pkg/excelexport"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	worksheet  string
	workers    int
	retries    int
	dateLayout string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "excel-exporter",
		Short: "Export rows to xlsx spreadsheets",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP export server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [file.json...]",
		Short: "Convert JSON arrays of objects to xlsx files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  convertFiles,
	}
	convertCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Output directory")
	convertCmd.Flags().StringVar(&worksheet, "worksheet", "", "Worksheet name (default: input file name)")
	convertCmd.Flags().IntVar(&workers, "workers", 4, "Files converted in parallel")
	convertCmd.Flags().IntVar(&retries, "retries", 0, "Extra attempts for a file that fails")
	convertCmd.Flags().StringVar(&dateLayout, "date-layout", excelexport.DefaultDateLayout, "Layout for date fields")
	convertCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, convertCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		return err
	}
	return app.Run()
}

func convertFiles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.InitLogging("", level); err != nil {
		return err
	}

	results, err := convert.Files(ctx, args, convert.Options{
		OutDir:    outDir,
		Worksheet: worksheet,
		Workers:   workers,
		Retries:   retries,
		Export: []excelexport.Option{
			excelexport.WithDateLayout(dateLayout),
			excelexport.WithLogger(logger.Logger()),
		},
	})
	if err != nil {
		return fmt.Errorf("convert failed: %w", err)
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d rows)\n", r.Input, r.Output, r.Rows)
	}
	return nil
}
