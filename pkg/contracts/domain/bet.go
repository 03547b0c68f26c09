package domain

// FileInfo holds the workbook header block of a BET measurement file.
// Every field is required-but-nullable: a missing cell becomes an empty
// string, never an extraction failure.
type FileInfo struct {
	FileName          string `json:"file_name" db:"file_name"`
	DateOfMeasurement string `json:"date_of_measurement" db:"date_of_measurement"`
	TimeOfMeasurement string `json:"time_of_measurement" db:"time_of_measurement"`
	Comment1          string `json:"comment1" db:"comment1"`
	Comment2          string `json:"comment2" db:"comment2"`
	Comment3          string `json:"comment3" db:"comment3"`
	Comment4          string `json:"comment4" db:"comment4"`
	SerialNumber      string `json:"serial_number" db:"serial_number"`
	Version           string `json:"version" db:"version"`
}

// BetParameters is the ordered block of measurement parameters read from the
// fixed parameter range of the sheet. Numeric fields are nil when the source
// cell is blank or non-numeric.
type BetParameters struct {
	SampleWeight           *float64 `json:"sample_weight" db:"sample_weight"`
	StandardVolume         *float64 `json:"standard_volume" db:"standard_volume"`
	DeadVolume             *float64 `json:"dead_volume" db:"dead_volume"`
	EquilibriumTime        *float64 `json:"equilibrium_time" db:"equilibrium_time"`
	Adsorptive             string   `json:"adsorptive" db:"adsorptive"`
	ApparatusTemperature   *float64 `json:"apparatus_temperature" db:"apparatus_temperature"`
	AdsorptionTemperature  *float64 `json:"adsorption_temperature" db:"adsorption_temperature"`
	StartingPoint          *int64   `json:"starting_point" db:"starting_point"`
	EndPoint               *int64   `json:"end_point" db:"end_point"`
	Slope                  *float64 `json:"slope" db:"slope"`
	Intercept              *float64 `json:"intercept" db:"intercept"`
	CorrelationCoefficient *float64 `json:"correlation_coefficient" db:"correlation_coefficient"`
	Vm                     *float64 `json:"vm" db:"vm"`
	AsBet                  *float64 `json:"as_bet" db:"as_bet"`
	CValue                 *float64 `json:"c_value" db:"c_value"`
	TotalPoreVolume        *float64 `json:"total_pore_volume" db:"total_pore_volume"`
	AveragePoreDiameter    *float64 `json:"average_pore_diameter" db:"average_pore_diameter"`
}

// TechnicalInfo is the second fixed block of instrument settings.
type TechnicalInfo struct {
	SaturatedVaporPressure    *float64 `json:"saturated_vapor_pressure" db:"saturated_vapor_pressure"`
	AdsorptionCrossSection    *float64 `json:"adsorption_cross_section" db:"adsorption_cross_section"`
	WallAdsorptionCorrection1 string   `json:"wall_adsorption_correction1" db:"wall_adsorption_correction1"`
	WallAdsorptionCorrection2 string   `json:"wall_adsorption_correction2" db:"wall_adsorption_correction2"`
	NumAdsorptionPoints       *int64   `json:"num_adsorption_points" db:"num_adsorption_points"`
	NumDesorptionPoints       *int64   `json:"num_desorption_points" db:"num_desorption_points"`
}

// PlotColumn names one data-point column by its position in the sheet.
type PlotColumn struct {
	Index int    `json:"col_index" db:"col_index"`
	Name  string `json:"col_name" db:"col_name"`
}

// DataPoint is one isotherm measurement row. Values maps a plot column index
// to the cell value; columns absent from a short row are simply not present.
type DataPoint struct {
	No     int              `json:"no" db:"no"`
	Values map[int]*float64 `json:"values"`
}

// Value returns the data point's value for the given plot column, or nil
// when the cell was blank, non-numeric, or outside the row.
func (p DataPoint) Value(col int) *float64 {
	if p.Values == nil {
		return nil
	}
	return p.Values[col]
}

// BetRecord is the aggregate produced by extracting one workbook. It is
// immutable once built: re-uploading a file creates a new record with a new
// identifier, never an in-place update.
type BetRecord struct {
	FileInfo      FileInfo      `json:"file_info"`
	MeasurementID string        `json:"measurement_id"`
	Parameters    BetParameters `json:"bet_parameters"`
	Technical     TechnicalInfo `json:"technical_info"`
	PlotColumns   []PlotColumn  `json:"plot_columns"`
	DataPoints    []DataPoint   `json:"data_points"`
}

// Column returns the plot column with the given index, if declared.
func (r *BetRecord) Column(index int) (PlotColumn, bool) {
	for _, c := range r.PlotColumns {
		if c.Index == index {
			return c, true
		}
	}
	return PlotColumn{}, false
}

// Series collects the non-positional values of one plot column across all
// data points, preserving measurement order. Missing cells stay nil so the
// result is always len(DataPoints) long.
func (r *BetRecord) Series(col int) []*float64 {
	out := make([]*float64, len(r.DataPoints))
	for i, p := range r.DataPoints {
		out[i] = p.Value(col)
	}
	return out
}

// PressureRange reports min and max of the relative pressure column together
// with the count of populated cells. ok is false when no cell is populated.
func (r *BetRecord) PressureRange(col int) (min, max float64, n int, ok bool) {
	for _, p := range r.DataPoints {
		v := p.Value(col)
		if v == nil {
			continue
		}
		if n == 0 || *v < min {
			min = *v
		}
		if n == 0 || *v > max {
			max = *v
		}
		n++
	}
	return min, max, n, n > 0
}

// Float returns a pointer to v. Convenience for building nullable fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
