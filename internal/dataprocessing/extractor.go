package dataprocessing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"betlab/internal/layout"
	"betlab/pkg/contracts/domain"
)

// ErrSheetNotFound is returned when the workbook has no sheet matching the
// layout. This is the only fatal extraction error.
var ErrSheetNotFound = errors.New("sheet not found")

// Extractor reads workbooks against a declarative cell layout.
type Extractor struct {
	layout layout.Layout
	logger *slog.Logger
}

// NewExtractor creates an extractor for the given layout.
func NewExtractor(lay layout.Layout, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		layout: lay,
		logger: logger.With(slog.String("component", "extractor")),
	}
}

// Extract parses one workbook into a BetRecord. The source is never
// mutated; identical bytes always yield an identical record.
func (e *Extractor) Extract(r io.Reader) (*domain.BetRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(e.layout.Sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, e.layout.Sheet)
	}

	rec := &domain.BetRecord{}
	rec.FileInfo = e.fileInfo(f)
	rec.Parameters = e.parameters(f)
	rec.Technical = e.technical(f)

	rows, err := f.GetRows(e.layout.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", e.layout.Sheet, err)
	}
	rec.PlotColumns = e.plotColumns(rows)
	rec.DataPoints = e.dataPoints(rows, rec.PlotColumns)

	e.logger.Info("workbook extracted",
		slog.String("file_name", rec.FileInfo.FileName),
		slog.Int("plot_columns", len(rec.PlotColumns)),
		slog.Int("data_points", len(rec.DataPoints)))

	return rec, nil
}

// stringCell reads a string field; a missing cell is the empty string.
func (e *Extractor) stringCell(f *excelize.File, field layout.Field) string {
	ref, ok := e.layout.Strings[field]
	if !ok {
		return ""
	}
	name, err := ref.Name()
	if err != nil {
		return ""
	}
	v, err := f.GetCellValue(e.layout.Sheet, name)
	if err != nil {
		e.warnCell(field, name, err)
		return ""
	}
	return toString(v)
}

// floatCell reads a numeric field; coercion failure yields nil.
func (e *Extractor) floatCell(f *excelize.File, field layout.Field) *float64 {
	ref, ok := e.layout.Floats[field]
	if !ok {
		return nil
	}
	name, err := ref.Name()
	if err != nil {
		return nil
	}
	v, err := f.GetCellValue(e.layout.Sheet, name)
	if err != nil {
		e.warnCell(field, name, err)
		return nil
	}
	out := toFloat(v)
	if out == nil && !isBlank(v) {
		e.logger.Warn("cell coercion skipped",
			slog.String("field", string(field)),
			slog.String("cell", name),
			slog.String("value", v))
	}
	return out
}

// intCell reads an integer field; coercion failure yields nil.
func (e *Extractor) intCell(f *excelize.File, field layout.Field) *int64 {
	ref, ok := e.layout.Ints[field]
	if !ok {
		return nil
	}
	name, err := ref.Name()
	if err != nil {
		return nil
	}
	v, err := f.GetCellValue(e.layout.Sheet, name)
	if err != nil {
		e.warnCell(field, name, err)
		return nil
	}
	out := toInt(v)
	if out == nil && !isBlank(v) {
		e.logger.Warn("cell coercion skipped",
			slog.String("field", string(field)),
			slog.String("cell", name),
			slog.String("value", v))
	}
	return out
}

func (e *Extractor) warnCell(field layout.Field, cell string, err error) {
	e.logger.Warn("cell read failed",
		slog.String("field", string(field)),
		slog.String("cell", cell),
		slog.String("error", err.Error()))
}

func (e *Extractor) fileInfo(f *excelize.File) domain.FileInfo {
	return domain.FileInfo{
		FileName:          e.stringCell(f, layout.FieldFileName),
		DateOfMeasurement: e.stringCell(f, layout.FieldDateOfMeasurement),
		TimeOfMeasurement: e.stringCell(f, layout.FieldTimeOfMeasurement),
		Comment1:          e.stringCell(f, layout.FieldComment1),
		Comment2:          e.stringCell(f, layout.FieldComment2),
		Comment3:          e.stringCell(f, layout.FieldComment3),
		Comment4:          e.stringCell(f, layout.FieldComment4),
		SerialNumber:      e.stringCell(f, layout.FieldSerialNumber),
		Version:           e.stringCell(f, layout.FieldVersion),
	}
}

func (e *Extractor) parameters(f *excelize.File) domain.BetParameters {
	return domain.BetParameters{
		SampleWeight:           e.floatCell(f, layout.FieldSampleWeight),
		StandardVolume:         e.floatCell(f, layout.FieldStandardVolume),
		DeadVolume:             e.floatCell(f, layout.FieldDeadVolume),
		EquilibriumTime:        e.floatCell(f, layout.FieldEquilibriumTime),
		Adsorptive:             e.stringCell(f, layout.FieldAdsorptive),
		ApparatusTemperature:   e.floatCell(f, layout.FieldApparatusTemperature),
		AdsorptionTemperature:  e.floatCell(f, layout.FieldAdsorptionTemperature),
		StartingPoint:          e.intCell(f, layout.FieldStartingPoint),
		EndPoint:               e.intCell(f, layout.FieldEndPoint),
		Slope:                  e.floatCell(f, layout.FieldSlope),
		Intercept:              e.floatCell(f, layout.FieldIntercept),
		CorrelationCoefficient: e.floatCell(f, layout.FieldCorrelationCoefficient),
		Vm:                     e.floatCell(f, layout.FieldVm),
		AsBet:                  e.floatCell(f, layout.FieldAsBet),
		CValue:                 e.floatCell(f, layout.FieldCValue),
		TotalPoreVolume:        e.floatCell(f, layout.FieldTotalPoreVolume),
		AveragePoreDiameter:    e.floatCell(f, layout.FieldAveragePoreDiameter),
	}
}

func (e *Extractor) technical(f *excelize.File) domain.TechnicalInfo {
	return domain.TechnicalInfo{
		SaturatedVaporPressure:    e.floatCell(f, layout.FieldSaturatedVaporPressure),
		AdsorptionCrossSection:    e.floatCell(f, layout.FieldAdsorptionCrossSection),
		WallAdsorptionCorrection1: e.stringCell(f, layout.FieldWallAdsorptionCorrection1),
		WallAdsorptionCorrection2: e.stringCell(f, layout.FieldWallAdsorptionCorrection2),
		NumAdsorptionPoints:       e.intCell(f, layout.FieldNumAdsorptionPoints),
		NumDesorptionPoints:       e.intCell(f, layout.FieldNumDesorptionPoints),
	}
}

// plotColumns reads the header row; every non-blank cell declares a column.
func (e *Extractor) plotColumns(rows [][]string) []domain.PlotColumn {
	var cols []domain.PlotColumn
	if e.layout.HeaderRow > len(rows) {
		return cols
	}
	header := rows[e.layout.HeaderRow-1]
	for j, name := range header {
		if isBlank(name) {
			continue
		}
		cols = append(cols, domain.PlotColumn{Index: j, Name: toString(name)})
	}
	return cols
}

// dataPoints scans from the first data row until the sequence column goes
// blank. A blank sequence cell ends the data region for good: the original
// instrument export never resumes after a gap, and neither do we.
func (e *Extractor) dataPoints(rows [][]string, cols []domain.PlotColumn) []domain.DataPoint {
	var points []domain.DataPoint
	for i := e.layout.DataStartRow() - 1; i < len(rows); i++ {
		row := rows[i]
		if e.layout.SeqCol >= len(row) || isBlank(row[e.layout.SeqCol]) {
			break
		}

		no := len(points) + 1
		if n := toInt(row[e.layout.SeqCol]); n != nil {
			no = int(*n)
		}

		p := domain.DataPoint{No: no, Values: make(map[int]*float64, len(cols))}
		for _, c := range cols {
			if c.Index >= len(row) {
				// Short row: remaining declared columns stay null.
				continue
			}
			if v := toFloat(row[c.Index]); v != nil {
				p.Values[c.Index] = v
			}
		}
		points = append(points, p)
	}
	return points
}
