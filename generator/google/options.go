package google

import (
	"context"
	"time"

	"github.com/w-h-a/fred/generator"
)

type rotationKey struct{}

// WithModelRotation spreads requests across every eligible chat model the
// account can see, refreshing the list after ttl. The configured model is
// ignored while rotation is on.
func WithModelRotation(ttl time.Duration) generator.Option {
	return func(o *generator.Options) {
		o.Context = context.WithValue(o.Context, rotationKey{}, ttl)
	}
}

func ModelRotationFrom(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(rotationKey{}).(time.Duration)
	return ttl, ok
}
