package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/w-h-a/fred/storer"
)

type memoryStorer struct {
	options    storer.Options
	namespaces map[string]map[string]storer.Record
	mtx        sync.RWMutex
}

func (s *memoryStorer) Upsert(ctx context.Context, namespace string, records []storer.Record) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = map[string]storer.Record{}
		s.namespaces[namespace] = ns
	}

	for _, rec := range records {
		cpy := make([]float32, len(rec.Values))
		copy(cpy, rec.Values)

		ns[rec.Id] = storer.Record{
			Id:       rec.Id,
			Values:   cpy,
			Metadata: rec.Metadata,
		}
	}

	return nil
}

func (s *memoryStorer) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]storer.Match, error) {
	matches := []storer.Match{}

	if topK < 1 {
		return matches, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, rec := range s.namespaces[namespace] {
		matches = append(matches, storer.Match{
			Id:       rec.Id,
			Score:    float32(CosineSimilarity(vector, rec.Values)),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Id < matches[j].Id
		}
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	s := &memoryStorer{
		options:    options,
		namespaces: map[string]map[string]storer.Record{},
		mtx:        sync.RWMutex{},
	}

	return s
}
