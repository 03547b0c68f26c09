// Package layout declares the fixed cell schema of BET measurement
// workbooks. The extractor consumes the schema generically, so a future
// layout revision is a new Layout value, not new extraction code.
package layout

import "github.com/xuri/excelize/v2"

// Field names a single extracted value. Field names double as the column
// names of the persisted record set.
type Field string

// FileInfo fields.
const (
	FieldFileName          Field = "file_name"
	FieldDateOfMeasurement Field = "date_of_measurement"
	FieldTimeOfMeasurement Field = "time_of_measurement"
	FieldComment1          Field = "comment1"
	FieldComment2          Field = "comment2"
	FieldComment3          Field = "comment3"
	FieldComment4          Field = "comment4"
	FieldSerialNumber      Field = "serial_number"
	FieldVersion           Field = "version"
)

// BetParameters fields.
const (
	FieldSampleWeight           Field = "sample_weight"
	FieldStandardVolume         Field = "standard_volume"
	FieldDeadVolume             Field = "dead_volume"
	FieldEquilibriumTime        Field = "equilibrium_time"
	FieldAdsorptive             Field = "adsorptive"
	FieldApparatusTemperature   Field = "apparatus_temperature"
	FieldAdsorptionTemperature  Field = "adsorption_temperature"
	FieldStartingPoint          Field = "starting_point"
	FieldEndPoint               Field = "end_point"
	FieldSlope                  Field = "slope"
	FieldIntercept              Field = "intercept"
	FieldCorrelationCoefficient Field = "correlation_coefficient"
	FieldVm                     Field = "vm"
	FieldAsBet                  Field = "as_bet"
	FieldCValue                 Field = "c_value"
	FieldTotalPoreVolume        Field = "total_pore_volume"
	FieldAveragePoreDiameter    Field = "average_pore_diameter"
)

// TechnicalInfo fields.
const (
	FieldSaturatedVaporPressure    Field = "saturated_vapor_pressure"
	FieldAdsorptionCrossSection    Field = "adsorption_cross_section"
	FieldWallAdsorptionCorrection1 Field = "wall_adsorption_correction1"
	FieldWallAdsorptionCorrection2 Field = "wall_adsorption_correction2"
	FieldNumAdsorptionPoints       Field = "num_adsorption_points"
	FieldNumDesorptionPoints       Field = "num_desorption_points"
)

// CellRef addresses one cell. Row is 1-based, Col is 0-based to match the
// column indexes stored with plot columns and data points.
type CellRef struct {
	Row int
	Col int
}

// Name returns the A1-style reference excelize expects.
func (c CellRef) Name() (string, error) {
	return excelize.CoordinatesToCellName(c.Col+1, c.Row)
}

// Layout is the complete cell schema for one workbook revision.
type Layout struct {
	// Sheet is the worksheet holding the measurement.
	Sheet string

	// Strings, Floats and Ints map fields to their cells by coercion kind.
	Strings map[Field]CellRef
	Floats  map[Field]CellRef
	Ints    map[Field]CellRef

	// HeaderRow is the 1-based row whose non-blank cells declare the plot
	// columns. Data rows start at HeaderRow+1.
	HeaderRow int

	// SeqCol is the 0-based column holding the data point sequence number.
	// The first blank cell in this column ends the data region.
	SeqCol int
}

// DataStartRow is the first 1-based row of the data region.
func (l Layout) DataStartRow() int { return l.HeaderRow + 1 }

// DefaultBET is the schema of the instrument's fixed-layout export, sheet
// "BET". Coordinates follow the instrument template and must not drift.
func DefaultBET() Layout {
	return Layout{
		Sheet: "BET",
		Strings: map[Field]CellRef{
			FieldFileName:                  {Row: 2, Col: 2},
			FieldDateOfMeasurement:         {Row: 3, Col: 2},
			FieldTimeOfMeasurement:         {Row: 4, Col: 2},
			FieldComment1:                  {Row: 5, Col: 2},
			FieldComment2:                  {Row: 6, Col: 2},
			FieldComment3:                  {Row: 7, Col: 2},
			FieldComment4:                  {Row: 8, Col: 2},
			FieldSerialNumber:              {Row: 9, Col: 2},
			FieldVersion:                   {Row: 10, Col: 2},
			FieldAdsorptive:                {Row: 16, Col: 2},
			FieldWallAdsorptionCorrection1: {Row: 14, Col: 4},
			FieldWallAdsorptionCorrection2: {Row: 15, Col: 4},
		},
		Floats: map[Field]CellRef{
			FieldSampleWeight:           {Row: 12, Col: 2},
			FieldStandardVolume:         {Row: 13, Col: 2},
			FieldDeadVolume:             {Row: 14, Col: 2},
			FieldEquilibriumTime:        {Row: 15, Col: 2},
			FieldApparatusTemperature:   {Row: 17, Col: 2},
			FieldAdsorptionTemperature:  {Row: 18, Col: 2},
			FieldSlope:                  {Row: 22, Col: 3},
			FieldIntercept:              {Row: 23, Col: 3},
			FieldCorrelationCoefficient: {Row: 24, Col: 3},
			FieldVm:                     {Row: 25, Col: 3},
			FieldAsBet:                  {Row: 26, Col: 3},
			FieldCValue:                 {Row: 27, Col: 3},
			FieldTotalPoreVolume:        {Row: 28, Col: 3},
			FieldAveragePoreDiameter:    {Row: 29, Col: 3},
			FieldSaturatedVaporPressure: {Row: 12, Col: 7},
			FieldAdsorptionCrossSection: {Row: 13, Col: 7},
		},
		Ints: map[Field]CellRef{
			FieldStartingPoint:       {Row: 20, Col: 3},
			FieldEndPoint:            {Row: 21, Col: 3},
			FieldNumAdsorptionPoints: {Row: 16, Col: 4},
			FieldNumDesorptionPoints: {Row: 17, Col: 4},
		},
		HeaderRow: 31,
		SeqCol:    0,
	}
}
