package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"betlab/internal/betfit"
	"betlab/internal/dataprocessing"
	apierrors "betlab/internal/errors"
	"betlab/internal/nomenclature"
	"betlab/internal/plot"
	"betlab/internal/report"
	"betlab/internal/storage"
	"betlab/pkg/contracts/domain"
)

// Extractor pulls a measurement record out of a workbook stream.
type Extractor interface {
	Extract(r io.Reader) (*domain.BetRecord, error)
}

// RecordStore persists and retrieves measurement records.
type RecordStore interface {
	SaveRecord(ctx context.Context, rec *domain.BetRecord) (int64, error)
	SetMeasurementID(ctx context.Context, id int64, measurementID string) error
	GetRecord(ctx context.Context, id int64) (*domain.BetRecord, error)
	ListFiles(ctx context.Context) ([]storage.FileEntry, error)
}

// Notebook is the lab notebook the finished report is pushed to.
type Notebook interface {
	Configured() bool
	CreateExperiment(ctx context.Context) (string, error)
	UpdateExperiment(ctx context.Context, id, title, body string) error
	AttachFile(ctx context.Context, id, fileName, contentType string, data []byte) error
	SetTag(ctx context.Context, id, tag string) error
	ExperimentURL(id string) string
}

// UploadResult summarizes a processed workbook upload.
type UploadResult struct {
	ID            int64  `json:"id"`
	MeasurementID string `json:"measurement_id"`
	FileName      string `json:"file_name"`
	DataPoints    int    `json:"data_points"`
}

// ELNResult reports where a pushed experiment ended up.
type ELNResult struct {
	ExperimentID string `json:"experiment_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
}

// BetService orchestrates the upload, report and ELN push pipeline.
type BetService struct {
	extractor Extractor
	store     RecordStore
	composer  *report.Composer
	notebook  Notebook
	metrics   *Metrics
	logger    *slog.Logger
}

// NewBetService creates the measurement pipeline service.
func NewBetService(extractor Extractor, store RecordStore, notebook Notebook, metrics *Metrics, logger *slog.Logger) *BetService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &BetService{
		extractor: extractor,
		store:     store,
		composer:  report.NewComposer(logger),
		notebook:  notebook,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "bet_service")),
	}
}

// ProcessUpload runs the extraction stage on an uploaded workbook and
// persists the result. Extraction is best effort for individual cells; only
// a missing sheet fails the upload.
func (s *BetService) ProcessUpload(ctx context.Context, fileName string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrEmptyUpload
	}

	s.logger.InfoContext(ctx, "upload received",
		slog.String("stage", string(domain.StageUploaded)),
		slog.String("file_name", fileName),
		slog.Int("bytes", len(data)))

	start := time.Now()
	rec, err := s.extractor.Extract(bytes.NewReader(data))
	s.metrics.ExtractDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		s.logger.ErrorContext(ctx, "extraction failed",
			slog.String("stage", string(domain.StageExtractionFailed)),
			slog.String("file_name", fileName),
			slog.String("error", err.Error()))
		return nil, apierrors.NewExtractionError("extract "+fileName, err)
	}
	if rec.FileInfo.FileName == "" {
		rec.FileInfo.FileName = strings.TrimSuffix(fileName, ".xlsx")
	}

	id, err := s.store.SaveRecord(ctx, rec)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewStorageError("persist record", err)
	}

	measurementID := nomenclature.MeasurementID(id, rec.FileInfo)
	if err := s.store.SetMeasurementID(ctx, id, measurementID); err != nil {
		return nil, apierrors.NewStorageError("assign measurement id", err)
	}
	rec.MeasurementID = measurementID

	s.metrics.UploadsTotal.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "extraction complete",
		slog.String("stage", string(domain.StageExtracted)),
		slog.Int64("file_id", id),
		slog.String("measurement_id", measurementID),
		slog.Int("data_points", len(rec.DataPoints)))

	return &UploadResult{
		ID:            id,
		MeasurementID: measurementID,
		FileName:      rec.FileInfo.FileName,
		DataPoints:    len(rec.DataPoints),
	}, nil
}

// GetRecord returns a stored measurement record.
func (s *BetService) GetRecord(ctx context.Context, id int64) (*domain.BetRecord, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// ListFiles returns the stored uploads, newest first.
func (s *BetService) ListFiles(ctx context.Context) ([]storage.FileEntry, error) {
	return s.store.ListFiles(ctx)
}

// GenerateReport runs the fit, plot and compose stages for a stored record
// and returns the finished PDF artifact.
func (s *BetService) GenerateReport(ctx context.Context, id int64) (*domain.ReportArtifact, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.composeFor(ctx, id, rec)
}

// ComposeReport runs the fit, plot and compose stages on a record that is
// not necessarily stored. Batch processing uses this path.
func (s *BetService) ComposeReport(ctx context.Context, rec *domain.BetRecord) (*domain.ReportArtifact, error) {
	return s.composeFor(ctx, 0, rec)
}

func (s *BetService) composeFor(ctx context.Context, id int64, rec *domain.BetRecord) (*domain.ReportArtifact, error) {
	x, y := fitSeries(rec)
	fit, err := betfit.Compute(x, y)
	if err != nil {
		s.metrics.ReportsTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewFitError(fmt.Sprintf("fit record %d", id), err)
	}
	s.logger.InfoContext(ctx, "fit computed",
		slog.String("stage", string(domain.StageFitComputed)),
		slog.Int64("file_id", id),
		slog.Float64("slope", fit.Slope),
		slog.Float64("intercept", fit.Intercept),
		slog.Float64("r2", fit.R2),
		slog.Int("points", fit.N))

	png, err := plot.Render(x, y, fit, plot.Options{
		Title:  "BET Plot: " + rec.FileInfo.FileName,
		XLabel: axisLabel(rec, 1, "p/p0"),
		YLabel: axisLabel(rec, 2, "p/Va(p0-p)"),
	})
	if err != nil {
		s.metrics.ReportsTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewRenderError(fmt.Sprintf("render plot for record %d", id), err)
	}
	s.logger.InfoContext(ctx, "plot rendered",
		slog.String("stage", string(domain.StageRendered)),
		slog.Int64("file_id", id),
		slog.Int("png_bytes", len(png)))

	artifact, err := s.composer.Compose(rec, fit, png)
	if err != nil {
		s.metrics.ReportsTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewRenderError(fmt.Sprintf("compose report for record %d", id), err)
	}

	s.metrics.ReportsTotal.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "report composed",
		slog.String("stage", string(domain.StageReported)),
		slog.Int64("file_id", id),
		slog.String("file_name", artifact.FileName),
		slog.Int("pdf_bytes", len(artifact.Data)))
	return artifact, nil
}

// PushToELN generates the report for a record and files it as a tagged
// experiment in the lab notebook. Attachment and tag failures are logged
// but do not fail the push; the experiment already exists at that point.
func (s *BetService) PushToELN(ctx context.Context, id int64, title string) (*ELNResult, error) {
	if s.notebook == nil || !s.notebook.Configured() {
		return nil, ErrELNDisabled
	}

	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	artifact, err := s.GenerateReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = "BET Measurement " + rec.MeasurementID
	}

	expID, err := s.notebook.CreateExperiment(ctx)
	if err != nil {
		s.metrics.ELNPushesTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewELNError("create experiment", err)
	}
	if err := s.notebook.UpdateExperiment(ctx, expID, title, artifact.Summary); err != nil {
		s.metrics.ELNPushesTotal.WithLabelValues("failed").Inc()
		return nil, apierrors.NewELNError("update experiment "+expID, err)
	}

	attachName := fmt.Sprintf("BET_Plot_%s.pdf", expID)
	if err := s.notebook.AttachFile(ctx, expID, attachName, artifact.ContentType, artifact.Data); err != nil {
		s.logger.WarnContext(ctx, "report attachment failed",
			slog.String("experiment_id", expID),
			slog.String("error", err.Error()))
	}
	if err := s.notebook.SetTag(ctx, expID, domain.ELNTag); err != nil {
		s.logger.WarnContext(ctx, "experiment tagging failed",
			slog.String("experiment_id", expID),
			slog.String("error", err.Error()))
	}

	s.metrics.ELNPushesTotal.WithLabelValues("ok").Inc()
	s.logger.InfoContext(ctx, "experiment pushed",
		slog.Int64("file_id", id),
		slog.String("experiment_id", expID),
		slog.String("title", title))

	return &ELNResult{
		ExperimentID: expID,
		URL:          s.notebook.ExperimentURL(expID),
		Title:        title,
	}, nil
}

// SheetNotFound reports whether an upload failed because the workbook lacks
// the measurement sheet.
func SheetNotFound(err error) bool {
	return errors.Is(err, dataprocessing.ErrSheetNotFound)
}

// InsufficientData reports whether a report failed for lack of valid pairs.
func InsufficientData(err error) bool {
	return errors.Is(err, betfit.ErrInsufficientData)
}

// fitSeries picks the x and y series for the linear fit: the second and
// third declared plot columns, matching the sheet layout where column one
// holds the point number.
func fitSeries(rec *domain.BetRecord) (x, y []*float64) {
	xCol, yCol := 1, 2
	if len(rec.PlotColumns) > 1 {
		xCol = rec.PlotColumns[1].Index
	}
	if len(rec.PlotColumns) > 2 {
		yCol = rec.PlotColumns[2].Index
	}
	return rec.Series(xCol), rec.Series(yCol)
}

// axisLabel uses the declared column header when present.
func axisLabel(rec *domain.BetRecord, pos int, fallback string) string {
	if len(rec.PlotColumns) > pos && rec.PlotColumns[pos].Name != "" {
		return rec.PlotColumns[pos].Name
	}
	return fallback
}
