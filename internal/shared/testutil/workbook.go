package testutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WorkbookBuilder assembles an in-memory xlsx fixture cell by cell.
type WorkbookBuilder struct {
	f     *excelize.File
	sheet string
}

// NewWorkbook starts a fixture workbook with the given measurement sheet.
func NewWorkbook(t *testing.T, sheet string) *WorkbookBuilder {
	t.Helper()
	f := excelize.NewFile()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	return &WorkbookBuilder{f: f, sheet: sheet}
}

// Set writes one cell by A1-style reference.
func (b *WorkbookBuilder) Set(t *testing.T, cell string, value any) *WorkbookBuilder {
	t.Helper()
	require.NoError(t, b.f.SetCellValue(b.sheet, cell, value))
	return b
}

// Row writes consecutive cells of one row starting at column A.
func (b *WorkbookBuilder) Row(t *testing.T, row int, values ...any) *WorkbookBuilder {
	t.Helper()
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		require.NoError(t, err)
		require.NoError(t, b.f.SetCellValue(b.sheet, cell, v))
	}
	return b
}

// Bytes serializes the workbook.
func (b *WorkbookBuilder) Bytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, b.f.Write(&buf))
	require.NoError(t, b.f.Close())
	return buf.Bytes()
}

// BETWorkbook builds a complete fixture matching the instrument's fixed
// layout: file info in column C, parameters in columns C and D, header row
// 31 and the given number of collinear data points (y = 2x + 1) from row 32.
func BETWorkbook(t *testing.T, points int) []byte {
	t.Helper()
	b := NewWorkbook(t, "BET")

	// FileInfo block, C2..C10.
	b.Set(t, "C2", "Sample1")
	b.Set(t, "C3", "12.06.2021")
	b.Set(t, "C4", "14:26:26")
	b.Set(t, "C5", "first comment")
	b.Set(t, "C6", "11TDR")
	b.Set(t, "C7", "300C 2h vacuum")
	b.Set(t, "C8", "")
	b.Set(t, "C9", "CBE01")
	b.Set(t, "C10", "1.03")

	// Parameters, C12..C18 and D20..D29.
	b.Set(t, "C12", 0.1234)
	b.Set(t, "C13", 17.35)
	b.Set(t, "C14", 12.11)
	b.Set(t, "C15", 10.0)
	b.Set(t, "C16", "N2")
	b.Set(t, "C17", 21.5)
	b.Set(t, "C18", -195.8)
	b.Set(t, "D20", 1)
	b.Set(t, "D21", 5)
	b.Set(t, "D22", 2.0)
	b.Set(t, "D23", 1.0)
	b.Set(t, "D24", 0.9999)
	b.Set(t, "D25", 45.6)
	b.Set(t, "D26", 198.4)
	b.Set(t, "D27", 104.2)
	b.Set(t, "D28", 0.31)
	b.Set(t, "D29", 6.2)

	// Technical info, H12/H13 and E14..E17.
	b.Set(t, "H12", 101.3)
	b.Set(t, "H13", 0.162)
	b.Set(t, "E14", "on")
	b.Set(t, "E15", "off")
	b.Set(t, "E16", points)
	b.Set(t, "E17", 0)

	// Plot column header and data region.
	b.Row(t, 31, "no", "p/p0", "p/Va(p0-p)")
	for i := 0; i < points; i++ {
		x := 0.05 * float64(i+1)
		b.Row(t, 32+i, i+1, x, 2*x+1)
	}

	return b.Bytes(t)
}

// BETWorkbookWithGap builds a fixture whose data region stops at a blank
// sequence cell, with more rows after the gap that must be ignored.
func BETWorkbookWithGap(t *testing.T, before, after int) []byte {
	t.Helper()
	b := NewWorkbook(t, "BET")
	b.Set(t, "C2", "Gapped")
	b.Row(t, 31, "no", "p/p0", "p/Va(p0-p)")
	row := 32
	for i := 0; i < before; i++ {
		x := 0.05 * float64(i+1)
		b.Row(t, row, i+1, x, 2*x+1)
		row++
	}
	row++ // blank row ends the region
	for i := 0; i < after; i++ {
		b.Row(t, row, fmt.Sprintf("%d", before+i+1), 0.9, 0.9)
		row++
	}
	return b.Bytes(t)
}
