package storer

import "context"

// Storer is a namespaced vector index. Upsert overwrites records that
// share an Id. Query returns at most topK matches ordered by descending
// score as ranked by the index itself.
type Storer interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
}
