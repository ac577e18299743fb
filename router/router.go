package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/w-h-a/fred/errs"
	"github.com/w-h-a/fred/internal/metrics"
)

type ModelInfo struct {
	Name                       string
	DisplayName                string
	SupportedGenerationMethods []string
}

// Lister reads the provider's model registry.
type Lister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Router rotates generation requests across the eligible models of a
// provider. The candidate list is cached for a TTL and the cursor only
// moves past a model once it has served a request.
type Router struct {
	options   Options
	lister    Lister
	models    []string
	expiresAt time.Time
	next      int
	now       func() time.Time
	mtx       sync.Mutex
}

// Do calls fn with each candidate in round-robin order, starting at the
// cursor, until one succeeds.
func (r *Router) Do(ctx context.Context, fn func(ctx context.Context, model string) error) error {
	models, start, err := r.candidates(ctx)
	if err != nil {
		return err
	}

	var (
		merr      *multierror.Error
		last      error
		attempted = make([]string, 0, len(models))
	)

	for i := range models {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx := (start + i) % len(models)
		model := models[idx]
		attempted = append(attempted, model)

		err := fn(ctx, model)
		if err == nil {
			metrics.IncModelAttempt(model, "ok")
			r.advance(idx, len(models))
			return nil
		}

		metrics.IncModelAttempt(model, "failed")
		slog.WarnContext(ctx, "model attempt failed", "model", model, "error", err)

		if r.options.OnError != nil {
			r.options.OnError(model, err)
		}

		last = err
		merr = multierror.Append(merr, fmt.Errorf("%s: %w", model, err))
	}

	return &errs.AllModelsFailedError{
		Models: attempted,
		Last:   last,
		Err:    merr.ErrorOrNil(),
	}
}

// Models returns the current eligible candidates, loading them if needed.
func (r *Router) Models(ctx context.Context) ([]string, error) {
	models, _, err := r.candidates(ctx)
	return models, err
}

// Refresh drops the cached candidates so the next call reloads them.
func (r *Router) Refresh() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.models = nil
	r.expiresAt = time.Time{}
}

func (r *Router) Cursor() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.next
}

func (r *Router) candidates(ctx context.Context) ([]string, int, error) {
	if models, next, ok := r.cached(); ok {
		return models, next, nil
	}

	// the registry call runs unlocked so a slow listing never blocks
	// Cursor, Refresh or requests already holding a snapshot
	infos, err := r.lister.ListModels(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list models: %w", err)
	}

	models := []string{}
	for _, info := range infos {
		if !r.options.Filter(info) {
			continue
		}
		models = append(models, strings.TrimPrefix(info.Name, "models/"))
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if len(models) == 0 {
		r.models = nil
		return nil, 0, errs.ErrNoEligibleModels
	}

	r.models = models
	r.expiresAt = r.now().Add(r.options.TTL)

	models = r.snapshot()

	return models, r.next, nil
}

func (r *Router) cached() ([]string, int, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if len(r.models) == 0 || !r.now().Before(r.expiresAt) {
		return nil, 0, false
	}

	models := r.snapshot()

	return models, r.next, true
}

// snapshot copies the candidates and clamps the cursor. Callers hold mtx.
func (r *Router) snapshot() []string {
	if r.next >= len(r.models) || r.next < 0 {
		r.next = 0
	}

	models := make([]string, len(r.models))
	copy(models, r.models)

	return models
}

func (r *Router) advance(idx, n int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.next = (idx + 1) % n
}

// ChatEligible keeps gemini chat models that are neither embedding-only
// nor in the pro tier and that support content generation.
func ChatEligible(info ModelInfo) bool {
	name := strings.ToLower(info.Name)
	display := strings.ToLower(info.DisplayName)

	if !strings.Contains(name, "gemini") {
		return false
	}

	if strings.Contains(name, "embedding") {
		return false
	}

	if strings.Contains(name, "pro") || strings.Contains(display, "pro") {
		return false
	}

	for _, method := range info.SupportedGenerationMethods {
		if method == "generateContent" {
			return true
		}
	}

	return false
}

func New(lister Lister, opts ...Option) *Router {
	options := NewOptions(opts...)

	return &Router{
		options: options,
		lister:  lister,
		now:     time.Now,
		mtx:     sync.Mutex{},
	}
}
