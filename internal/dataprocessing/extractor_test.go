package dataprocessing

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betlab/internal/layout"
	"betlab/internal/shared/testutil"
)

func TestExtractFullWorkbook(t *testing.T) {
	data := testutil.BETWorkbook(t, 8)
	ex := NewExtractor(layout.DefaultBET(), slog.Default())

	rec, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Sample1", rec.FileInfo.FileName)
	assert.Equal(t, "12.06.2021", rec.FileInfo.DateOfMeasurement)
	assert.Equal(t, "14:26:26", rec.FileInfo.TimeOfMeasurement)
	assert.Equal(t, "11TDR", rec.FileInfo.Comment2)
	assert.Equal(t, "CBE01", rec.FileInfo.SerialNumber)

	require.NotNil(t, rec.Parameters.SampleWeight)
	assert.InDelta(t, 0.1234, *rec.Parameters.SampleWeight, 1e-9)
	require.NotNil(t, rec.Parameters.AsBet)
	assert.InDelta(t, 198.4, *rec.Parameters.AsBet, 1e-9)
	require.NotNil(t, rec.Parameters.StartingPoint)
	assert.Equal(t, int64(1), *rec.Parameters.StartingPoint)
	assert.Equal(t, "N2", rec.Parameters.Adsorptive)

	require.NotNil(t, rec.Technical.SaturatedVaporPressure)
	assert.InDelta(t, 101.3, *rec.Technical.SaturatedVaporPressure, 1e-9)
	require.NotNil(t, rec.Technical.NumAdsorptionPoints)
	assert.Equal(t, int64(8), *rec.Technical.NumAdsorptionPoints)

	require.Len(t, rec.PlotColumns, 3)
	assert.Equal(t, "no", rec.PlotColumns[0].Name)
	assert.Equal(t, "p/p0", rec.PlotColumns[1].Name)
	assert.Equal(t, "p/Va(p0-p)", rec.PlotColumns[2].Name)

	require.Len(t, rec.DataPoints, 8)
	first := rec.DataPoints[0]
	assert.Equal(t, 1, first.No)
	require.NotNil(t, first.Values[1])
	assert.InDelta(t, 0.05, *first.Values[1], 1e-9)
	require.NotNil(t, first.Values[2])
	assert.InDelta(t, 1.1, *first.Values[2], 1e-9)
}

func TestExtractStopsAtBlankSequenceCell(t *testing.T) {
	data := testutil.BETWorkbookWithGap(t, 5, 3)
	ex := NewExtractor(layout.DefaultBET(), slog.Default())

	rec, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)

	// Data never resumes after a gap.
	assert.Len(t, rec.DataPoints, 5)
}

func TestExtractSheetMissing(t *testing.T) {
	data := testutil.NewWorkbook(t, "Other").Bytes(t)
	ex := NewExtractor(layout.DefaultBET(), slog.Default())

	_, err := ex.Extract(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestExtractNonNumericCellBecomesNil(t *testing.T) {
	b := testutil.NewWorkbook(t, "BET")
	b.Set(t, "C2", "Broken")
	b.Set(t, "C12", "not a number")
	data := b.Bytes(t)

	logger, captured := testutil.NewTestLogger(t)
	ex := NewExtractor(layout.DefaultBET(), logger)

	rec, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Nil(t, rec.Parameters.SampleWeight)
	assert.True(t, captured.ContainsMessage("cell coercion skipped"))
	assert.Zero(t, captured.CountLevel(slog.LevelError))
}

func TestExtractShortRowLeavesColumnsNull(t *testing.T) {
	b := testutil.NewWorkbook(t, "BET")
	b.Row(t, 31, "no", "p/p0", "p/Va(p0-p)")
	b.Row(t, 32, 1, 0.1) // third column missing
	data := b.Bytes(t)

	ex := NewExtractor(layout.DefaultBET(), slog.Default())
	rec, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, rec.DataPoints, 1)
	assert.NotNil(t, rec.DataPoints[0].Values[1])
	assert.Nil(t, rec.DataPoints[0].Values[2])
}

func TestExtractIsDeterministic(t *testing.T) {
	data := testutil.BETWorkbook(t, 4)
	ex := NewExtractor(layout.DefaultBET(), slog.Default())

	a, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)
	b, err := ex.Extract(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
