package plot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betlab/internal/betfit"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func fp(v float64) *float64 { return &v }

func series(n int) (x, y []*float64) {
	for i := 0; i < n; i++ {
		v := 0.05 * float64(i+1)
		x = append(x, fp(v))
		y = append(y, fp(2*v+1))
	}
	return x, y
}

func TestRenderProducesPNG(t *testing.T) {
	x, y := series(5)
	fit, err := betfit.Compute(x, y)
	require.NoError(t, err)

	png, err := Render(x, y, fit, Options{
		Title:  "BET Plot: Sample1",
		XLabel: "p/p0",
		YLabel: "p/Va(p0-p)",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature), "output must be a PNG")
	assert.Greater(t, len(png), 1000)
}

func TestRenderNoPoints(t *testing.T) {
	_, err := Render(nil, nil, betfit.Fit{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPoints))
}

func TestRenderAllNullPoints(t *testing.T) {
	x := []*float64{nil, nil}
	y := []*float64{fp(1), fp(2)}
	_, err := Render(x, y, betfit.Fit{}, Options{})
	assert.True(t, errors.Is(err, ErrNoPoints))
}

func TestRenderDeterministic(t *testing.T) {
	x, y := series(6)
	fit, err := betfit.Compute(x, y)
	require.NoError(t, err)

	a, err := Render(x, y, fit, Options{})
	require.NoError(t, err)
	b, err := Render(x, y, fit, Options{})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
