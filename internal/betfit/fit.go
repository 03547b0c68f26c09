// Package betfit computes the ordinary least-squares line through the
// BET-transformed isotherm points. Slope and intercept of this line are what
// the surface-area evaluation downstream is built on.
package betfit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when fewer than two valid paired points
// remain after null filtering. Without two points there is no line.
var ErrInsufficientData = errors.New("insufficient data for linear fit")

// Fit holds the least-squares result over the valid point subset.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// R2 is the residual-based coefficient of determination, kept for
	// diagnostic display next to the plot.
	R2 float64 `json:"r2"`
	// XMin and XMax bound the observed x range. The fit line is drawn
	// inside this domain only, never extrapolated.
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	// N is the number of valid pairs that entered the regression.
	N int `json:"n"`
}

// At evaluates the fit line at x.
func (f Fit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// Compute fits y = slope*x + intercept over all pairs where both series are
// non-nil. Sequences may differ in length; the overhang has no pair and is
// ignored.
func Compute(x, y []*float64) (Fit, error) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var xs, ys []float64
	for i := 0; i < n; i++ {
		if x[i] == nil || y[i] == nil {
			continue
		}
		xs = append(xs, *x[i])
		ys = append(ys, *y[i])
	}
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("%w: %d valid pairs", ErrInsufficientData, len(xs))
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		// All x identical: the line is vertical and no slope exists.
		return Fit{}, fmt.Errorf("%w: degenerate x values", ErrInsufficientData)
	}

	fit := Fit{
		Slope:     slope,
		Intercept: intercept,
		N:         len(xs),
	}

	fit.R2 = stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(fit.R2) {
		// Constant y fitted exactly by a flat line leaves 0/0.
		fit.R2 = 1
	}

	fit.XMin, fit.XMax = xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < fit.XMin {
			fit.XMin = v
		}
		if v > fit.XMax {
			fit.XMax = v
		}
	}
	return fit, nil
}
