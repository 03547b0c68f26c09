package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betlab/internal/shared/testutil"
	"betlab/pkg/contracts/domain"
)

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	s, err := Open(filepath.Join(t.TempDir(), "betlab.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord() *domain.BetRecord {
	rec := &domain.BetRecord{
		FileInfo: domain.FileInfo{
			FileName:          "Sample1",
			DateOfMeasurement: "12.06.2021",
			TimeOfMeasurement: "14:26:26",
			Comment2:          "11TDR",
			Comment3:          "300C 2h vacuum",
			SerialNumber:      "CBE01",
			Version:           "1.03",
		},
		Parameters: domain.BetParameters{
			SampleWeight:  fp(0.1234),
			AsBet:         fp(198.4),
			Adsorptive:    "N2",
			StartingPoint: ip(1),
			EndPoint:      ip(5),
		},
		Technical: domain.TechnicalInfo{
			SaturatedVaporPressure: fp(101.3),
			NumAdsorptionPoints:    ip(5),
		},
		PlotColumns: []domain.PlotColumn{
			{Index: 0, Name: "no"},
			{Index: 1, Name: "p/p0"},
			{Index: 2, Name: "p/Va(p0-p)"},
		},
	}
	for i := 0; i < 5; i++ {
		x := 0.05 * float64(i+1)
		rec.DataPoints = append(rec.DataPoints, domain.DataPoint{
			No:     i + 1,
			Values: map[int]*float64{1: fp(x), 2: fp(2*x + 1)},
		})
	}
	return rec
}

func TestSaveAndGetRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRecord(ctx, testRecord())
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Sample1", got.FileInfo.FileName)
	assert.Equal(t, "11TDR", got.FileInfo.Comment2)
	require.NotNil(t, got.Parameters.SampleWeight)
	assert.InDelta(t, 0.1234, *got.Parameters.SampleWeight, 1e-9)
	assert.Nil(t, got.Parameters.Slope)
	require.NotNil(t, got.Technical.NumAdsorptionPoints)
	assert.Equal(t, int64(5), *got.Technical.NumAdsorptionPoints)

	require.Len(t, got.PlotColumns, 3)
	assert.Equal(t, "p/p0", got.PlotColumns[1].Name)

	require.Len(t, got.DataPoints, 5)
	assert.Equal(t, 1, got.DataPoints[0].No)
	require.NotNil(t, got.DataPoints[0].Values[2])
	assert.InDelta(t, 1.1, *got.DataPoints[0].Values[2], 1e-9)
	// Sequence column carries no float values.
	assert.Nil(t, got.DataPoints[0].Values[0])
}

func TestGetRecordNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRecord(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestReuploadCreatesNewID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveRecord(ctx, testRecord())
	require.NoError(t, err)
	second, err := s.SaveRecord(ctx, testRecord())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSetMeasurementID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRecord(ctx, testRecord())
	require.NoError(t, err)

	mid := "11TDR_0021-0008_CBE01_BET01_0001_20210612-142626.dat"
	require.NoError(t, s.SetMeasurementID(ctx, id, mid))

	got, err := s.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, mid, got.MeasurementID)
}

func TestSetMeasurementIDUnknownRecord(t *testing.T) {
	s := openTestStore(t)

	err := s.SetMeasurementID(context.Background(), 404, "x.dat")
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestListFilesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := testRecord()
	first, err := s.SaveRecord(ctx, rec)
	require.NoError(t, err)
	rec2 := testRecord()
	rec2.FileInfo.FileName = "Sample2"
	second, err := s.SaveRecord(ctx, rec2)
	require.NoError(t, err)

	entries, err := s.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID)
	assert.Equal(t, "Sample2", entries[0].FileName)
	assert.Equal(t, first, entries[1].ID)
}

func TestListFilesEmpty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.ListFiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
