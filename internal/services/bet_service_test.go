package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betlab/internal/dataprocessing"
	"betlab/internal/storage"
	"betlab/pkg/contracts/domain"
)

type stubExtractor struct {
	rec *domain.BetRecord
	err error
}

func (s *stubExtractor) Extract(r io.Reader) (*domain.BetRecord, error) {
	io.Copy(io.Discard, r)
	return s.rec, s.err
}

type memStore struct {
	nextID  int64
	records map[int64]*domain.BetRecord
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, records: map[int64]*domain.BetRecord{}}
}

func (m *memStore) SaveRecord(ctx context.Context, rec *domain.BetRecord) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	id := m.nextID
	m.nextID++
	cp := *rec
	m.records[id] = &cp
	return id, nil
}

func (m *memStore) SetMeasurementID(ctx context.Context, id int64, measurementID string) error {
	rec, ok := m.records[id]
	if !ok {
		return storage.ErrRecordNotFound
	}
	rec.MeasurementID = measurementID
	return nil
}

func (m *memStore) GetRecord(ctx context.Context, id int64) (*domain.BetRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memStore) ListFiles(ctx context.Context) ([]storage.FileEntry, error) {
	entries := []storage.FileEntry{}
	for id, rec := range m.records {
		entries = append(entries, storage.FileEntry{
			ID:            id,
			FileName:      rec.FileInfo.FileName,
			MeasurementID: rec.MeasurementID,
		})
	}
	return entries, nil
}

type stubNotebook struct {
	configured  bool
	createErr   error
	updateErr   error
	attachErr   error
	tagErr      error
	attachments []string
	tags        []string
	title       string
	body        string
}

func (n *stubNotebook) Configured() bool { return n.configured }

func (n *stubNotebook) CreateExperiment(ctx context.Context) (string, error) {
	return "17", n.createErr
}

func (n *stubNotebook) UpdateExperiment(ctx context.Context, id, title, body string) error {
	n.title, n.body = title, body
	return n.updateErr
}

func (n *stubNotebook) AttachFile(ctx context.Context, id, fileName, contentType string, data []byte) error {
	n.attachments = append(n.attachments, fileName)
	return n.attachErr
}

func (n *stubNotebook) SetTag(ctx context.Context, id, tag string) error {
	n.tags = append(n.tags, tag)
	return n.tagErr
}

func (n *stubNotebook) ExperimentURL(id string) string {
	return "https://eln.example.org/experiments/" + id
}

func testRecord() *domain.BetRecord {
	rec := &domain.BetRecord{
		FileInfo: domain.FileInfo{
			FileName:          "Sample1",
			DateOfMeasurement: "2021-06-12",
			TimeOfMeasurement: "14:26:26",
			Comment2:          "11TDR",
			Comment3:          "300C 2h vacuum",
			SerialNumber:      "CBE01",
		},
		Parameters: domain.BetParameters{
			SampleWeight: domain.Float(0.1234),
			AsBet:        domain.Float(198.4),
		},
		PlotColumns: []domain.PlotColumn{
			{Index: 0, Name: "no"},
			{Index: 1, Name: "p/p0"},
			{Index: 2, Name: "p/Va(p0-p)"},
		},
	}
	for i := 1; i <= 5; i++ {
		x := float64(i) * 0.05
		rec.DataPoints = append(rec.DataPoints, domain.DataPoint{
			No: i,
			Values: map[int]*float64{
				1: domain.Float(x),
				2: domain.Float(2*x + 1),
			},
		})
	}
	return rec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessUpload(t *testing.T) {
	store := newMemStore()
	svc := NewBetService(&stubExtractor{rec: testRecord()}, store, nil, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sample1.xlsx", []byte("workbook"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, 5, res.DataPoints)
	assert.Equal(t, "Sample1", res.FileName)
	assert.Contains(t, res.MeasurementID, "11TDR")
	assert.Contains(t, res.MeasurementID, "BET01_0001")

	stored, err := store.GetRecord(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, res.MeasurementID, stored.MeasurementID)
}

func TestProcessUploadEmptyFile(t *testing.T) {
	svc := NewBetService(&stubExtractor{rec: testRecord()}, newMemStore(), nil, NopMetrics(), testLogger())

	_, err := svc.ProcessUpload(context.Background(), "empty.xlsx", nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestProcessUploadSheetMissing(t *testing.T) {
	extractor := &stubExtractor{err: fmt.Errorf("open workbook: %w", dataprocessing.ErrSheetNotFound)}
	svc := NewBetService(extractor, newMemStore(), nil, NopMetrics(), testLogger())

	_, err := svc.ProcessUpload(context.Background(), "wrong.xlsx", []byte("data"))
	require.Error(t, err)
	assert.True(t, SheetNotFound(err))
}

func TestProcessUploadFallsBackToUploadName(t *testing.T) {
	rec := testRecord()
	rec.FileInfo.FileName = ""
	svc := NewBetService(&stubExtractor{rec: rec}, newMemStore(), nil, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "fallback.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.FileName)
}

func TestGenerateReport(t *testing.T) {
	store := newMemStore()
	svc := NewBetService(&stubExtractor{rec: testRecord()}, store, nil, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sample1.xlsx", []byte("workbook"))
	require.NoError(t, err)

	artifact, err := svc.GenerateReport(context.Background(), res.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ReportContentType, artifact.ContentType)
	assert.Equal(t, "Sample1.pdf", artifact.FileName)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF")), "artifact should be a PDF")
	assert.Contains(t, string(artifact.Data), "Sample1", "report should carry the sample name")
	// y = 2x + 1 is an exact line.
	assert.Contains(t, artifact.Summary, "R2=1.000000")
}

func TestGenerateReportInsufficientData(t *testing.T) {
	rec := testRecord()
	rec.DataPoints = rec.DataPoints[:1]
	store := newMemStore()
	svc := NewBetService(&stubExtractor{rec: rec}, store, nil, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sparse.xlsx", []byte("workbook"))
	require.NoError(t, err)

	_, err = svc.GenerateReport(context.Background(), res.ID)
	require.Error(t, err)
	assert.True(t, InsufficientData(err))
}

func TestGenerateReportUnknownRecord(t *testing.T) {
	svc := NewBetService(&stubExtractor{rec: testRecord()}, newMemStore(), nil, NopMetrics(), testLogger())

	_, err := svc.GenerateReport(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPushToELN(t *testing.T) {
	store := newMemStore()
	notebook := &stubNotebook{configured: true}
	svc := NewBetService(&stubExtractor{rec: testRecord()}, store, notebook, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sample1.xlsx", []byte("workbook"))
	require.NoError(t, err)

	pushed, err := svc.PushToELN(context.Background(), res.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "17", pushed.ExperimentID)
	assert.Contains(t, pushed.Title, res.MeasurementID)
	assert.Equal(t, []string{"BET_Plot_17.pdf"}, notebook.attachments)
	assert.Equal(t, []string{"BET_result"}, notebook.tags)
	assert.Contains(t, notebook.body, "BET Measurement Report")
}

func TestPushToELNDisabled(t *testing.T) {
	svc := NewBetService(&stubExtractor{rec: testRecord()}, newMemStore(), &stubNotebook{}, NopMetrics(), testLogger())

	_, err := svc.PushToELN(context.Background(), 1, "title")
	assert.ErrorIs(t, err, ErrELNDisabled)
}

func TestPushToELNAttachFailureIsNonFatal(t *testing.T) {
	store := newMemStore()
	notebook := &stubNotebook{configured: true, attachErr: errors.New("disk full"), tagErr: errors.New("nope")}
	svc := NewBetService(&stubExtractor{rec: testRecord()}, store, notebook, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sample1.xlsx", []byte("workbook"))
	require.NoError(t, err)

	pushed, err := svc.PushToELN(context.Background(), res.ID, "custom title")
	require.NoError(t, err)
	assert.Equal(t, "custom title", pushed.Title)
}

func TestPushToELNCreateFailure(t *testing.T) {
	store := newMemStore()
	notebook := &stubNotebook{configured: true, createErr: errors.New("503")}
	svc := NewBetService(&stubExtractor{rec: testRecord()}, store, notebook, NopMetrics(), testLogger())

	res, err := svc.ProcessUpload(context.Background(), "sample1.xlsx", []byte("workbook"))
	require.NoError(t, err)

	_, err = svc.PushToELN(context.Background(), res.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create experiment")
}
