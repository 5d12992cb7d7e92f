// Package api exposes the exploration surface over HTTP: product catalog,
// per-product metadata, per-point sampling at native resolution, the zonal
// table and the run report.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"landtrend/internal/report"
	"landtrend/ports"
)

// Server hosts the exploration API.
type Server struct {
	router chi.Router
	store  ports.ProductStore

	// summary and zonal are optional providers populated after a run.
	summary func() *report.RunSummary
	zonal   func() []ports.TractRecord
}

// Option configures optional server features.
type Option func(*Server)

// WithRunSummary exposes the run report at /report.
func WithRunSummary(provider func() *report.RunSummary) Option {
	return func(s *Server) { s.summary = provider }
}

// WithZonalTable exposes the zonal-statistics table at /zonal.
func WithZonalTable(provider func() []ports.TractRecord) Option {
	return func(s *Server) { s.zonal = provider }
}

// NewServer creates the API server over a product store.
func NewServer(store ports.ProductStore, opts ...Option) *Server {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Get("/{name}", s.handleGetProduct)
		r.Get("/{name}/sample", s.handleSampleProduct)
	})
	r.Get("/zonal", s.handleZonal)
	r.Get("/report", s.handleReport)

	s.router = r
	return s
}

// Handler returns the http handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
