package cacher

import "context"

// Cacher stores embeddings by content key. Get reports a miss with
// ok == false and a nil error.
type Cacher interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vector []float32) error
}
