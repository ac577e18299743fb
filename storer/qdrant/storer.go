package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/storer"
	getsafe "github.com/w-h-a/fred/util/get_safe"
	"github.com/w-h-a/fred/util/transport"
)

type qdrantStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *qdrantStorer) Upsert(ctx context.Context, namespace string, records []storer.Record) error {
	if len(records) == 0 {
		return nil
	}

	req := qdrantUpsertRequest{
		Points: make([]qdrantPoint, 0, len(records)),
	}

	for _, rec := range records {
		req.Points = append(req.Points, qdrantPoint{
			Id:     PointId(namespace, rec.Id),
			Vector: rec.Values,
			Payload: map[string]any{
				"namespace":  namespace,
				"record_id":  rec.Id,
				"metadata":   rec.Metadata,
				"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
			},
		})
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStorer) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]storer.Match, error) {
	matches := []storer.Match{}

	if topK < 1 {
		return matches, nil
	}

	req := qdrantSearchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
		Filter: qdrantFilter{
			Must: []qdrantCondition{
				{Key: "namespace", Match: map[string]any{"value": namespace}},
			},
		},
	}

	var rsp qdrantEnvelope[[]qdrantScoredPoint]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.options.Collection))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	for _, point := range rsp.Result {
		id := getsafe.String(point.Payload, "record_id")
		if len(id) == 0 {
			id = point.Id
		}

		matches = append(matches, storer.Match{
			Id:       id,
			Score:    float32(point.Score),
			Metadata: getsafe.Metadata(point.Payload, "metadata"),
		})
	}

	return matches, nil
}

// PointId maps a record id onto the UUID space qdrant requires, stable
// per namespace.
func PointId(namespace, id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(namespace+"/"+id)).String()
}

func (s *qdrantStorer) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path
	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return errs.Upstream("qdrant", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return errs.Format("qdrant response: %v", err)
		}
	}

	return nil
}

func (s *qdrantStorer) configure(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.createCollection(ctx)
}

func (s *qdrantStorer) collectionExists(ctx context.Context) (bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	var rsp qdrantEnvelope[json.RawMessage]

	err := s.do(ctx, http.MethodGet, path, nil, &rsp)

	var upstreamErr *errs.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (s *qdrantStorer) createCollection(ctx context.Context) error {
	distance := s.options.Distance
	if len(distance) == 0 {
		distance = "Cosine"
	}
	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.options.VectorSize,
			"distance": distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Collection))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Collection) == 0 ||
		options.VectorSize == 0 {
		panic("missing location, collection, or vector size for qdrant storer")
	}

	s := &qdrantStorer{
		options: options,
		client:  transport.NewClient(15 * time.Second),
	}

	if err := s.configure(options.Context); err != nil {
		detail := "failed to configure qdrant collection"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return s
}
