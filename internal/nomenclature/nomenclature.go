// Package nomenclature derives the lab-wide measurement identifier from the
// fields of an extracted workbook. The format is
//
//	<operator>_<sampleID>_<device>_BET01_<index>_<YYYYMMDD-HHMMSS>.dat
//
// e.g. 11TDR_0021-0008_CBE01_BET01_0001_20210612-142626.dat.
package nomenclature

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"betlab/pkg/contracts/domain"
)

const runCode = "BET01"

var (
	sampleIDRe  = regexp.MustCompile(`(\d{4}-\d{4})`)
	alnumRe     = regexp.MustCompile(`[^A-Za-z0-9]`)
	opTokenRe   = regexp.MustCompile(`([A-Za-z0-9]{3,})`)
	whitespace  = regexp.MustCompile(`\s+`)
	timeFormats = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"02.01.2006 15:04:05",
		"02.01.2006",
	}
)

// MeasurementID builds the identifier for a record persisted under fileID.
// Every component has a fallback so the ID is always well formed, even for
// sparsely filled workbooks.
func MeasurementID(fileID int64, fi domain.FileInfo) string {
	op := operatorCode(fi.Comment2)
	sample := sampleID(fi.FileName, fi.Comment1, fi.Comment3)
	dev := deviceCode(fi.SerialNumber, fi.Comment4)
	ts := timestamp(fi.DateOfMeasurement, fi.TimeOfMeasurement)
	return fmt.Sprintf("%s_%s_%s_%s_%04d_%s.dat", op, sample, dev, runCode, fileID, ts)
}

func operatorCode(op string) string {
	op = strings.TrimSpace(op)
	if op == "" {
		return "SCIENT"
	}
	if m := opTokenRe.FindString(op); m != "" {
		return m
	}
	if fields := whitespace.Split(op, -1); len(fields) > 0 && fields[0] != "" {
		return fields[0]
	}
	return "SCIENT"
}

// sampleID finds a 0000-0000 style sample number in any of the candidates.
func sampleID(candidates ...string) string {
	for _, c := range candidates {
		if m := sampleIDRe.FindString(c); m != "" {
			return m
		}
	}
	return "0000-0000"
}

func deviceCode(serial, instrument string) string {
	if s := firstToken(serial); s != "" {
		return s
	}
	if s := firstToken(instrument); s != "" {
		return s
	}
	return "DEV01"
}

// firstToken takes the first whitespace-separated token, stripped to
// alphanumerics.
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	tok := whitespace.Split(s, -1)[0]
	return alnumRe.ReplaceAllString(tok, "")
}

// timestamp parses date + time of measurement, falling back to the current
// UTC instant when the workbook carries an unparseable stamp.
func timestamp(date, tod string) string {
	combo := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(tod))
	if combo != "" {
		for _, layout := range timeFormats {
			if t, err := time.Parse(layout, combo); err == nil {
				return t.Format("20060102-150405")
			}
		}
	}
	return time.Now().UTC().Format("20060102-150405")
}
