package http

import (
	"context"
	"net/http"

	"github.com/w-h-a/fred/server"
)

type middlewareKey struct{}
type allowOriginKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

// WithAllowOrigin sets the Access-Control-Allow-Origin answered to every
// request. The default is "*".
func WithAllowOrigin(origin string) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, allowOriginKey{}, origin)
	}
}

func AllowOriginFrom(ctx context.Context) (string, bool) {
	origin, ok := ctx.Value(allowOriginKey{}).(string)
	return origin, ok && len(origin) > 0
}
