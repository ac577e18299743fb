package persister

import (
	"context"

	"github.com/w-h-a/fred/observation"
)

// Persister is the document store holding observations. ReplaceSeries
// drops every stored observation of the series before inserting the new
// ones. SetEmbedding attaches a generated embedding to a stored record.
type Persister interface {
	ReplaceSeries(ctx context.Context, seriesId string, observations []observation.Observation) (int, error)
	List(ctx context.Context) ([]observation.Observation, error)
	ListSeries(ctx context.Context, seriesId string) ([]observation.Observation, error)
	SetEmbedding(ctx context.Context, id string, vector []float32, key string) error
}
