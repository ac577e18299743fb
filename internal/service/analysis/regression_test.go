package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/errs"
)

func TestLinearRecoversExactLine(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{3, 5, 7, 9, 11}

	fit, err := Linear(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 3, fit.Coefficients[0], 1e-9)
	assert.InDelta(t, 2, fit.Coefficients[1], 1e-9)
	assert.InDelta(t, 1, fit.R2, 1e-9)
	assert.Equal(t, "y = 2.0000 * x + 3.0000", fit.Equation)
	assert.InDelta(t, 21, fit.Predict(9), 1e-9)
}

func TestLinearRejectsDegenerateInput(t *testing.T) {
	_, err := Linear([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Linear([]float64{1, 1}, []float64{1, 2})
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Linear([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, errs.ErrFormat)
}

func TestLinearConstantSeriesHasFiniteR2(t *testing.T) {
	fit, err := Linear([]float64{0, 1, 2}, []float64{4, 4, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0, fit.Coefficients[1], 1e-12)
	assert.False(t, math.IsNaN(fit.R2))
}

func TestPolynomialRecoversQuadratic(t *testing.T) {
	xs := []float64{0, 30, 60, 90, 120, 150, 180}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 0.01*x*x - 2*x + 5
	}

	fit, err := Polynomial(xs, ys, 2)
	require.NoError(t, err)
	require.Len(t, fit.Coefficients, 3)
	assert.InDelta(t, 5, fit.Coefficients[0], 1e-6)
	assert.InDelta(t, -2, fit.Coefficients[1], 1e-6)
	assert.InDelta(t, 0.01, fit.Coefficients[2], 1e-9)
	assert.InDelta(t, 1, fit.R2, 1e-9)
	assert.Equal(t, "Polynomial Regression (order 2)", fit.Model)
}

func TestPolynomialOrderBounds(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{1, 2, 3}

	_, err := Polynomial(xs, ys, 0)
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Polynomial(xs, ys, MaxPolynomialOrder+1)
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Polynomial(xs, ys, 3)
	assert.ErrorIs(t, err, errs.ErrFormat)
}

func TestLogarithmic(t *testing.T) {
	xs := []float64{1, 2, 4, 8, 16}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3*math.Log(x) + 1
	}

	fit, err := Logarithmic(xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, 1, fit.Coefficients[0], 1e-9)
	assert.InDelta(t, 3, fit.Coefficients[1], 1e-9)
	assert.InDelta(t, 1, fit.R2, 1e-9)

	_, err = Logarithmic([]float64{0, 1}, []float64{1, 2})
	assert.ErrorIs(t, err, errs.ErrFormat)
}
