package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/fred/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type httpServer struct {
	options server.Options
	router  *mux.Router
	origin  string
	srv     *http.Server
	mtx     sync.Mutex
}

func (s *httpServer) Options() server.Options {
	return s.options
}

func (s *httpServer) Handle(path string, handler http.Handler, methods ...string) {
	route := s.router.Handle(path, handler)
	if len(methods) > 0 {
		route.Methods(append(methods, http.MethodOptions)...)
	}
}

func (s *httpServer) Handler() http.Handler {
	var h http.Handler = s.router

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			h = ms[i](h)
		}
	}

	h = cors(s.origin, h)

	return otelhttp.NewHandler(h, s.options.Name)
}

func (s *httpServer) Run() error {
	s.mtx.Lock()
	s.srv = &http.Server{
		Addr:              s.options.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mtx.Unlock()

	slog.InfoContext(s.options.Context, "server listening", "name", s.options.Name, "address", s.options.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	s.mtx.Lock()
	srv := s.srv
	s.mtx.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func cors(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	s := &httpServer{
		options: options,
		router:  mux.NewRouter(),
		origin:  "*",
		mtx:     sync.Mutex{},
	}

	if origin, ok := AllowOriginFrom(options.Context); ok {
		s.origin = origin
	}

	return s
}
