package fetcher

import (
	"context"

	"github.com/w-h-a/fred/observation"
)

// Fetcher reads the observations of one series from a statistics API.
// Missing values are dropped.
type Fetcher interface {
	Fetch(ctx context.Context, seriesId string) ([]observation.Observation, error)
}
