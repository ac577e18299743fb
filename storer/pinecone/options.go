package pinecone

import (
	"context"

	"github.com/w-h-a/fred/storer"
)

type indexKey struct{}

// WithIndex resolves the index host by name when no location is given.
func WithIndex(name string) storer.Option {
	return func(o *storer.Options) {
		o.Context = context.WithValue(o.Context, indexKey{}, name)
	}
}

func IndexFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(indexKey{}).(string)
	return name, ok
}
