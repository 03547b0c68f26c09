package report

import (
	"fmt"
	"strings"

	"betlab/internal/betfit"
	"betlab/pkg/contracts/domain"
)

// Summary builds the rich-text body that accompanies the report when it is
// pushed to the external ELN. The structure mirrors the lab's experiment
// write-up: meta data, procedure, results.
func Summary(rec *domain.BetRecord, fit betfit.Fit) string {
	fi := rec.FileInfo
	pmin, pmax, n, ok := rec.PressureRange(pressureColumn(rec))
	pRange := "-"
	if ok {
		pRange = fmt.Sprintf("%g to %g", pmin, pmax)
	}

	var b strings.Builder
	b.WriteString("<h1>BET Measurement Report</h1>\n")

	b.WriteString("<h2>Meta Data</h2>\n<ul>\n")
	writeItem(&b, "Measurement ID", orDash(rec.MeasurementID))
	writeItem(&b, "File", orDash(fi.FileName))
	writeItem(&b, "Date", strings.TrimSpace(fi.DateOfMeasurement+" "+fi.TimeOfMeasurement))
	writeItem(&b, "Operator", orDash(fi.Comment2))
	writeItem(&b, "Instrument", orDash(fi.Comment4))
	writeItem(&b, "Serial #", orDash(fi.SerialNumber))
	writeItem(&b, "Version", orDash(fi.Version))
	b.WriteString("</ul>\n")

	b.WriteString("<h2>Experimental Procedure</h2>\n")
	fmt.Fprintf(&b,
		"<p>%s g of the sample were pretreated under the following conditions: %s. "+
			"For the evaluation of the BET isotherm, %d points in a pressure range of %s were considered.</p>\n",
		fmtFloat(rec.Parameters.SampleWeight), orDash(fi.Comment3), n, pRange)

	b.WriteString("<h2>Results</h2>\n")
	fmt.Fprintf(&b,
		"<p>The sample exhibited a specific surface area of %s and a pore volume of %s. "+
			"Linear fit: slope=%.6g, intercept=%.6g, R2=%.6f (%d points).</p>\n",
		fmtFloat(rec.Parameters.AsBet), fmtFloat(rec.Parameters.TotalPoreVolume),
		fit.Slope, fit.Intercept, fit.R2, fit.N)

	return b.String()
}

func writeItem(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  <li><strong>%s:</strong> %s</li>\n", label, value)
}

// pressureColumn picks the relative pressure column: the second declared
// plot column of the fixed layout, falling back to the first value column.
func pressureColumn(rec *domain.BetRecord) int {
	if len(rec.PlotColumns) > 1 {
		return rec.PlotColumns[1].Index
	}
	return 1
}
