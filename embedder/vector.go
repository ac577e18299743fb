package embedder

import (
	"math"
	"strings"

	"github.com/w-h-a/fred/errs"
)

// Normalize scales raw to unit L2 length. It fails when the magnitude is
// zero or not finite.
func Normalize(raw []float32) ([]float32, error) {
	var sum float64
	for _, v := range raw {
		sum += float64(v) * float64(v)
	}

	magnitude := math.Sqrt(sum)
	if magnitude == 0 || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return nil, errs.Normalization("cannot normalize vector with magnitude %v", magnitude)
	}

	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(float64(v) / magnitude)
	}

	return out, nil
}

// Finalize validates a provider response against the expected dimensions
// and normalizes it.
func Finalize(raw []float32, dims int) ([]float32, error) {
	if len(raw) == 0 {
		return nil, errs.Format("embedding response has no values")
	}

	if dims > 0 && len(raw) != dims {
		return nil, errs.Format("embedding has %d values, expected %d", len(raw), dims)
	}

	return Normalize(raw)
}

func ValidateText(text string) error {
	if len(strings.TrimSpace(text)) == 0 {
		return errs.Format("text to embed is empty")
	}
	return nil
}

func Magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
