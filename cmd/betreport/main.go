// Command betreport batch processes a directory of measurement workbooks
// into PDF reports without going through the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"betlab/internal/config"
	"betlab/internal/dataprocessing"
	"betlab/internal/infrastructure"
	"betlab/internal/layout"
	"betlab/internal/services"
	"betlab/internal/validation"
)

func main() {
	inDir := flag.String("in", "data/uploads", "input directory holding .xlsx workbooks")
	outDir := flag.String("out", "data/reports", "output directory for PDF reports")
	workers := flag.Int("workers", 4, "number of workbooks processed in parallel")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if err := run(context.Background(), logger, *inDir, *outDir, *workers); err != nil {
		logger.Error("Batch processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, inDir, outDir string, workers int) error {
	if workers < 1 {
		workers = 1
	}

	validator := validation.NewWorkbookValidator(logger)
	if _, err := validator.ValidateInputDirectory(inDir); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}

	var workbooks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if validator.ValidateWorkbookFile(filepath.Join(inDir, entry.Name())) == nil {
			workbooks = append(workbooks, entry.Name())
		}
	}
	if len(workbooks) == 0 {
		return fmt.Errorf("no workbooks found in %s", inDir)
	}

	logger.Info("Starting batch report generation",
		slog.String("input_dir", inDir),
		slog.String("output_dir", outDir),
		slog.Int("workbooks", len(workbooks)),
		slog.Int("workers", workers))

	extractor := dataprocessing.NewExtractor(layout.DefaultBET(), logger)
	svc := services.NewBetService(extractor, nil, nil, services.NopMetrics(), logger)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, name := range workbooks {
		g.Go(func() error {
			return processWorkbook(ctx, logger, extractor, svc, inDir, outDir, name)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Batch report generation complete", slog.Int("workbooks", len(workbooks)))
	return nil
}

func processWorkbook(ctx context.Context, logger *slog.Logger, extractor *dataprocessing.Extractor, svc *services.BetService, inDir, outDir, name string) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	f, err := os.Open(filepath.Join(inDir, name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	rec, err := extractor.Extract(f)
	if err != nil {
		return fmt.Errorf("extract %s: %w", name, err)
	}
	if rec.FileInfo.FileName == "" {
		rec.FileInfo.FileName = strings.TrimSuffix(name, filepath.Ext(name))
	}

	artifact, err := svc.ComposeReport(ctx, rec)
	if err != nil {
		return fmt.Errorf("compose report for %s: %w", name, err)
	}

	outPath := filepath.Join(outDir, artifact.FileName)
	if err := os.WriteFile(outPath, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	logger.InfoContext(ctx, "Report written",
		slog.String("workbook", name),
		slog.String("report", outPath),
		slog.Int("pdf_bytes", len(artifact.Data)))
	return nil
}
