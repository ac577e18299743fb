package pinecone

import (
	"context"
	"fmt"
	"sync"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/storer"
	"google.golang.org/protobuf/types/known/structpb"
)

type pineconeStorer struct {
	options storer.Options
	client  *pinecone.Client
	host    string
	conns   map[string]*pinecone.IndexConnection
	mtx     sync.Mutex
}

func (s *pineconeStorer) Upsert(ctx context.Context, namespace string, records []storer.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.index(ctx, namespace)
	if err != nil {
		return err
	}

	vectors := make([]*pinecone.Vector, 0, len(records))

	for _, rec := range records {
		meta, err := structpb.NewStruct(rec.Metadata)
		if err != nil {
			return fmt.Errorf("pinecone metadata for %s: %w", rec.Id, err)
		}

		vectors = append(vectors, &pinecone.Vector{
			Id:       rec.Id,
			Values:   rec.Values,
			Metadata: meta,
		})
	}

	if _, err := conn.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("pinecone upsert: %w", err)
	}

	return nil
}

func (s *pineconeStorer) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]storer.Match, error) {
	matches := []storer.Match{}

	if topK < 1 {
		return matches, nil
	}

	conn, err := s.index(ctx, namespace)
	if err != nil {
		return nil, err
	}

	rsp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}

	for _, match := range rsp.Matches {
		if match == nil || match.Vector == nil {
			continue
		}

		var meta map[string]any
		if match.Vector.Metadata != nil {
			meta = match.Vector.Metadata.AsMap()
		}

		matches = append(matches, storer.Match{
			Id:       match.Vector.Id,
			Score:    match.Score,
			Metadata: meta,
		})
	}

	return matches, nil
}

func (s *pineconeStorer) index(ctx context.Context, namespace string) (*pinecone.IndexConnection, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if conn, ok := s.conns[namespace]; ok {
		return conn, nil
	}

	if s.client == nil {
		if len(s.options.ApiKey) == 0 {
			return nil, errs.Configuration("pinecone storer requires PINECONE_API_KEY")
		}

		client, err := pinecone.NewClient(pinecone.NewClientParams{
			ApiKey: s.options.ApiKey,
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone client: %w", err)
		}

		s.client = client
	}

	if len(s.host) == 0 {
		name, ok := IndexFrom(s.options.Context)
		if !ok || len(name) == 0 {
			return nil, errs.Configuration("pinecone storer requires an index host or index name")
		}

		idx, err := s.client.DescribeIndex(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe index %s: %w", name, err)
		}

		s.host = idx.Host
	}

	conn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      s.host,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone index connection: %w", err)
	}

	s.conns[namespace] = conn

	return conn, nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	s := &pineconeStorer{
		options: options,
		host:    options.Location,
		conns:   map[string]*pinecone.IndexConnection{},
		mtx:     sync.Mutex{},
	}

	return s
}
