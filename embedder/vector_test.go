package embedder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/fred/errs"
)

func TestNormalizeProducesUnitVectors(t *testing.T) {
	inputs := [][]float32{
		{3, 4},
		{1, 1, 1, 1},
		{-0.002, 0.5, 12, 1e-4},
		{1e-20, 0, 0},
	}

	for _, in := range inputs {
		out, err := Normalize(in)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, Magnitude(out), 1e-6)
	}
}

func TestNormalizeRejectsDegenerateVectors(t *testing.T) {
	inputs := [][]float32{
		{},
		{0, 0, 0},
		{float32(math.NaN()), 1},
		{float32(math.Inf(1)), 1},
	}

	for _, in := range inputs {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, errs.ErrNormalization)
	}
}

func TestFinalize(t *testing.T) {
	_, err := Finalize(nil, 3)
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Finalize([]float32{1, 2}, 3)
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Finalize([]float32{0, 0, 0}, 3)
	assert.ErrorIs(t, err, errs.ErrNormalization)

	out, err := Finalize([]float32{0, 3, 4}, 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0.6, 0.8}, out, 1e-6)
}

func TestValidateText(t *testing.T) {
	assert.ErrorIs(t, ValidateText("  \n"), errs.ErrFormat)
	assert.NoError(t, ValidateText("federal funds rate"))
}
