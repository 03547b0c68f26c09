// Package report composes the one-page BET measurement report. The page
// holds a metadata block, the parameters table and the embedded fit plot;
// when the table does not fit, it is truncated with an ellipsis row instead
// of spilling onto a second page. That is a documented limitation of the
// report format, not something to paginate away.
package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-pdf/fpdf"

	"betlab/internal/betfit"
	"betlab/pkg/contracts/domain"
)

const (
	pageBottomLimit = 262.0 // mm, usable height on Letter before the margin
	rowHeight       = 5.2   // mm per table row
	labelWidth      = 70.0
	valueWidth      = 110.0
)

// Composer builds PDF artifacts from extracted records and rendered plots.
type Composer struct {
	logger *slog.Logger
}

// NewComposer creates a report composer.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{logger: logger.With(slog.String("component", "report_composer"))}
}

// Compose renders the single-page report and returns it as an in-memory
// artifact. The caller owns persistence and transport of the bytes.
func (c *Composer) Compose(rec *domain.BetRecord, fit betfit.Fit, plotPNG []byte) (*domain.ReportArtifact, error) {
	return c.ComposeWithRows(rec, fit, plotPNG, ParameterRows(rec))
}

// ComposeWithRows is Compose with a caller-supplied parameters table,
// letting callers append derived rows to the standard set.
func (c *Composer) ComposeWithRows(rec *domain.BetRecord, fit betfit.Fit, plotPNG []byte, rows []Row) (*domain.ReportArtifact, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	// Uncompressed page streams keep identical inputs byte-comparable.
	pdf.SetCompression(false)
	pdf.SetTitle("BET Measurement Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "BET Measurement Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	c.metadataBlock(pdf, rec)
	c.plotBlock(pdf, plotPNG, fit)
	c.parametersTable(pdf, rec, rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	name := rec.FileInfo.FileName
	if name == "" {
		name = "bet_report"
	}
	return &domain.ReportArtifact{
		Data:        buf.Bytes(),
		ContentType: domain.ReportContentType,
		FileName:    name + ".pdf",
		Summary:     Summary(rec, fit),
	}, nil
}

type kv struct{ k, v string }

func (c *Composer) metadataBlock(pdf *fpdf.Fpdf, rec *domain.BetRecord) {
	fi := rec.FileInfo
	rows := []kv{
		{"File name", fi.FileName},
		{"Measurement ID", rec.MeasurementID},
		{"Date / time", fi.DateOfMeasurement + " " + fi.TimeOfMeasurement},
		{"Operator", fi.Comment2},
		{"Instrument", fi.Comment4},
		{"Conditions", fi.Comment3},
		{"Serial number", fi.SerialNumber},
		{"Version", fi.Version},
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Metadata", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		pdf.CellFormat(labelWidth, rowHeight, r.k, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, r.v, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func (c *Composer) plotBlock(pdf *fpdf.Fpdf, plotPNG []byte, fit betfit.Fit) {
	if len(plotPNG) == 0 {
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("bet_plot", opts, bytes.NewReader(plotPNG))
	x := (216.0 - 130.0) / 2 // center a 130mm wide image on Letter
	pdf.ImageOptions("bet_plot", x, pdf.GetY(), 130, 0, true, opts, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5,
		fmt.Sprintf("Linear fit over %d points: slope=%.6g, intercept=%.6g, R2=%.6f", fit.N, fit.Slope, fit.Intercept, fit.R2),
		"", 1, "C", false, 0, "")
	pdf.Ln(2)
}

// parametersTable writes the BET parameter and technical info rows, cutting
// the list with an ellipsis row when the remaining page space runs out.
func (c *Composer) parametersTable(pdf *fpdf.Fpdf, rec *domain.BetRecord, rows []Row) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Parameters", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	capacity := int((pageBottomLimit - pdf.GetY()) / rowHeight)
	if capacity < 1 {
		capacity = 1
	}
	truncated := false
	if len(rows) > capacity {
		rows = rows[:capacity-1]
		truncated = true
	}

	for _, r := range rows {
		pdf.CellFormat(labelWidth, rowHeight, r.Label, "T", 0, "L", false, 0, "")
		pdf.CellFormat(valueWidth, rowHeight, r.Value, "T", 1, "L", false, 0, "")
	}
	if truncated {
		pdf.CellFormat(labelWidth+valueWidth, rowHeight, "... table truncated, see raw record for the full set", "T", 1, "L", false, 0, "")
		c.logger.Warn("parameters table truncated",
			slog.Int("capacity", capacity),
			slog.String("file_name", rec.FileInfo.FileName))
	}
}

// Row is one label/value line of the parameters table.
type Row struct{ Label, Value string }

// ParameterRows flattens BetParameters and TechnicalInfo into ordered
// label/value rows, the order matching the sheet layout.
func ParameterRows(rec *domain.BetRecord) []Row {
	p, t := rec.Parameters, rec.Technical
	return []Row{
		{"Sample weight [g]", fmtFloat(p.SampleWeight)},
		{"Standard volume [cm3]", fmtFloat(p.StandardVolume)},
		{"Dead volume [cm3]", fmtFloat(p.DeadVolume)},
		{"Equilibrium time [sec]", fmtFloat(p.EquilibriumTime)},
		{"Adsorptive", orDash(p.Adsorptive)},
		{"Apparatus temperature [C]", fmtFloat(p.ApparatusTemperature)},
		{"Adsorption temperature [K]", fmtFloat(p.AdsorptionTemperature)},
		{"Starting point", fmtInt(p.StartingPoint)},
		{"End point", fmtInt(p.EndPoint)},
		{"Slope", fmtFloat(p.Slope)},
		{"Intercept", fmtFloat(p.Intercept)},
		{"Correlation coefficient", fmtFloat(p.CorrelationCoefficient)},
		{"Vm", fmtFloat(p.Vm)},
		{"Specific surface area (as,BET)", fmtFloat(p.AsBet)},
		{"C value", fmtFloat(p.CValue)},
		{"Total pore volume", fmtFloat(p.TotalPoreVolume)},
		{"Average pore diameter", fmtFloat(p.AveragePoreDiameter)},
		{"Saturated vapor pressure", fmtFloat(t.SaturatedVaporPressure)},
		{"Adsorption cross section", fmtFloat(t.AdsorptionCrossSection)},
		{"Wall adsorption correction 1", orDash(t.WallAdsorptionCorrection1)},
		{"Wall adsorption correction 2", orDash(t.WallAdsorptionCorrection2)},
		{"Adsorption points", fmtInt(t.NumAdsorptionPoints)},
		{"Desorption points", fmtInt(t.NumDesorptionPoints)},
	}
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
