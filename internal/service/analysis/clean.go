package analysis

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/w-h-a/fred/observation"
)

// RemoveInvalid drops observations whose value is not finite or is
// negative.
func RemoveInvalid(observations []observation.Observation) []observation.Observation {
	out := make([]observation.Observation, 0, len(observations))
	for _, o := range observations {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) || o.Value < 0 {
			continue
		}
		out = append(out, o)
	}
	return out
}

// MinMaxNormalize scales values onto [0, 1]. A constant series is
// returned unchanged.
func MinMaxNormalize(observations []observation.Observation) []observation.Observation {
	out := slices.Clone(observations)
	if len(out) == 0 {
		return out
	}

	lo, hi := out[0].Value, out[0].Value
	for _, o := range out[1:] {
		lo = math.Min(lo, o.Value)
		hi = math.Max(hi, o.Value)
	}

	if hi == lo {
		return out
	}

	for i := range out {
		out[i].Value = (out[i].Value - lo) / (hi - lo)
	}

	return out
}

// RemoveOutliers keeps observations within 1.5 IQR of the quartiles.
// Quartiles are read at floor(n/4) and floor(3n/4) of the sorted values.
func RemoveOutliers(observations []observation.Observation) []observation.Observation {
	if len(observations) == 0 {
		return []observation.Observation{}
	}

	values := make([]float64, len(observations))
	for i, o := range observations {
		values[i] = o.Value
	}
	sort.Float64s(values)

	q1 := values[int(math.Floor(float64(len(values))*0.25))]
	q3 := values[int(math.Floor(float64(len(values))*0.75))]
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	out := make([]observation.Observation, 0, len(observations))
	for _, o := range observations {
		if o.Value >= lower && o.Value <= upper {
			out = append(out, o)
		}
	}
	return out
}

// MovingAverage replaces each value with the mean of the trailing window.
// The first window-1 observations have no full window and are dropped.
func MovingAverage(observations []observation.Observation, window int) []observation.Observation {
	if window <= 1 {
		return slices.Clone(observations)
	}

	out := []observation.Observation{}

	sum := 0.0
	for i, o := range observations {
		sum += o.Value
		if i >= window {
			sum -= observations[i-window].Value
		}
		if i < window-1 {
			continue
		}

		avg := o
		avg.Value = sum / float64(window)
		avg.Embedding = nil
		avg.EmbeddingKey = ""
		out = append(out, avg)
	}

	return out
}

// FilterByDateRange keeps observations dated within [start, end]. A zero
// bound is open.
func FilterByDateRange(observations []observation.Observation, start, end time.Time) []observation.Observation {
	out := make([]observation.Observation, 0, len(observations))
	for _, o := range observations {
		if !start.IsZero() && o.Date.Before(start) {
			continue
		}
		if !end.IsZero() && o.Date.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// PercentChange returns the change from each observation to the next in
// percent, dated at the later one. Steps from a zero value are skipped.
func PercentChange(observations []observation.Observation) []observation.Observation {
	out := []observation.Observation{}

	for i := 1; i < len(observations); i++ {
		prev := observations[i-1].Value
		if prev == 0 {
			continue
		}

		change := observations[i]
		change.Value = (change.Value - prev) / prev * 100
		change.Embedding = nil
		change.EmbeddingKey = ""
		out = append(out, change)
	}

	return out
}

// AggregateByDate averages observations sharing a day and sorts the
// result by date.
func AggregateByDate(observations []observation.Observation) []observation.Observation {
	type group struct {
		first observation.Observation
		sum   float64
		count int
	}

	groups := map[string]*group{}
	order := []string{}

	for _, o := range observations {
		day := o.Day()
		g, ok := groups[day]
		if !ok {
			g = &group{first: o}
			groups[day] = g
			order = append(order, day)
		}
		g.sum += o.Value
		g.count++
	}

	out := make([]observation.Observation, 0, len(order))
	for _, day := range order {
		g := groups[day]
		o := g.first
		o.Value = g.sum / float64(g.count)
		if g.count > 1 {
			o.Embedding = nil
			o.EmbeddingKey = ""
		}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}
