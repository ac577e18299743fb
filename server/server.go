package server

import (
	"context"
	"net/http"
)

type Server interface {
	Options() Options
	Handle(path string, handler http.Handler, methods ...string)
	Handler() http.Handler
	Run() error
	Stop(ctx context.Context) error
}
