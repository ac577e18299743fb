package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/w-h-a/fred/observation"
	"github.com/w-h-a/fred/persister"
)

type memoryPersister struct {
	options persister.Options
	records map[string]observation.Observation
	nextId  int
	mtx     sync.RWMutex
}

func (p *memoryPersister) ReplaceSeries(ctx context.Context, seriesId string, observations []observation.Observation) (int, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for id, rec := range p.records {
		if rec.SeriesId == seriesId {
			delete(p.records, id)
		}
	}

	for _, o := range observations {
		p.nextId++
		o.ID = strconv.Itoa(p.nextId)
		o.SeriesId = seriesId
		o.Embedding = copyVector(o.Embedding)
		p.records[o.ID] = o
	}

	return len(observations), nil
}

func (p *memoryPersister) List(ctx context.Context) ([]observation.Observation, error) {
	return p.list(func(observation.Observation) bool { return true }), nil
}

func (p *memoryPersister) ListSeries(ctx context.Context, seriesId string) ([]observation.Observation, error) {
	return p.list(func(o observation.Observation) bool { return o.SeriesId == seriesId }), nil
}

func (p *memoryPersister) SetEmbedding(ctx context.Context, id string, vector []float32, key string) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	rec, ok := p.records[id]
	if !ok {
		return fmt.Errorf("observation %s not found", id)
	}

	rec.Embedding = copyVector(vector)
	rec.EmbeddingKey = key
	p.records[id] = rec

	return nil
}

func (p *memoryPersister) list(keep func(observation.Observation) bool) []observation.Observation {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	out := []observation.Observation{}

	for _, rec := range p.records {
		if !keep(rec) {
			continue
		}
		rec.Embedding = copyVector(rec.Embedding)
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SeriesId != out[j].SeriesId {
			return out[i].SeriesId < out[j].SeriesId
		}
		return out[i].Date.Before(out[j].Date)
	})

	return out
}

func copyVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	cpy := make([]float32, len(v))
	copy(cpy, v)
	return cpy
}

func NewPersister(opts ...persister.Option) persister.Persister {
	options := persister.NewOptions(opts...)

	p := &memoryPersister{
		options: options,
		records: map[string]observation.Observation{},
		mtx:     sync.RWMutex{},
	}

	return p
}
