package betfit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func TestComputeCollinear(t *testing.T) {
	var x, y []*float64
	for i := 0; i < 5; i++ {
		v := 0.05 * float64(i+1)
		x = append(x, fp(v))
		y = append(y, fp(2*v+1))
	}

	fit, err := Compute(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.Equal(t, 5, fit.N)
	assert.InDelta(t, 0.05, fit.XMin, 1e-9)
	assert.InDelta(t, 0.25, fit.XMax, 1e-9)
}

func TestComputeSkipsNullPairs(t *testing.T) {
	x := []*float64{fp(1), nil, fp(2), fp(3), fp(4)}
	y := []*float64{fp(3), fp(99), nil, fp(7), fp(9)}

	fit, err := Compute(x, y)
	require.NoError(t, err)

	// Only the pairs (1,3), (3,7), (4,9) survive; still y = 2x + 1.
	assert.Equal(t, 3, fit.N)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
}

func TestComputeUnevenLengthsIgnoreOverhang(t *testing.T) {
	x := []*float64{fp(1), fp(2), fp(3), fp(4)}
	y := []*float64{fp(3), fp(5)}

	fit, err := Compute(x, y)
	require.NoError(t, err)
	assert.Equal(t, 2, fit.N)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
}

func TestComputeInsufficientData(t *testing.T) {
	tests := []struct {
		name string
		x, y []*float64
	}{
		{"empty", nil, nil},
		{"single point", []*float64{fp(1)}, []*float64{fp(2)}},
		{"all nulls", []*float64{nil, nil}, []*float64{fp(1), fp(2)}},
		{"degenerate x", []*float64{fp(2), fp(2), fp(2)}, []*float64{fp(1), fp(2), fp(3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.x, tt.y)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInsufficientData))
		})
	}
}

func TestComputeR2Imperfect(t *testing.T) {
	x := []*float64{fp(1), fp(2), fp(3), fp(4)}
	y := []*float64{fp(2.1), fp(3.9), fp(6.2), fp(7.8)}

	fit, err := Compute(x, y)
	require.NoError(t, err)
	assert.Greater(t, fit.R2, 0.99)
	assert.Less(t, fit.R2, 1.0)
}

func TestAt(t *testing.T) {
	fit := Fit{Slope: 2, Intercept: 1}
	assert.InDelta(t, 5.0, fit.At(2), 1e-12)
}
