// Package server serves the interactive flow-diagram dashboard.
//
// The dashboard page is a single embedded HTML document. It talks to the
// JSON API below and keeps a websocket open so that every control change
// redraws the diagram without a page reload:
//
//	GET /                   dashboard page
//	GET /healthz            liveness probe
//	GET /api/columns        table columns and selectable middle layers
//	GET /api/values         distinct values of ?column=
//	GET /api/rows           one page of the table (?page=&size=)
//	GET /api/summary        value frequencies and age statistics
//	GET /api/sankey         one diagram, in ?format= (json by default)
//	GET /ws                 diagram requests and replies as JSON messages
//
// /api/sankey and /ws take the layers as ?middle= (or ?layers=), plus
// min_count, width, height, filter_column and filter_value. A missing or
// zero min_count, width or height selects the default (1, 1500 and 800);
// negative values are rejected with INVALID_THRESHOLD or INVALID_DIMENSION.
// /api/rows caps size at 1000 rows; pages past the end are empty.
//
// Errors are reported as {"code": ..., "message": ...}. Validation errors
// use status 400; the page shows the message and keeps the previous
// diagram on screen.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/cancerflow/pkg/dataset"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Server serves one dataset. The dataset is read-only once the server is
// created, so handlers run concurrently without locking.
type Server struct {
	ds       *dataset.Dataset
	runner   *pipeline.Runner
	logger   *log.Logger
	title    string
	upgrader websocket.Upgrader
}

// Option configures a [Server].
type Option func(*Server)

// WithTitle sets the dashboard title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithCheckOrigin sets the websocket origin check. By default only
// same-origin connections are accepted.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// New creates a server for ds. A nil runner gets an uncached runner and a
// nil logger the default logger.
func New(ds *dataset.Dataset, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		ds:     ds,
		runner: runner,
		logger: logger,
		title:  pipeline.DefaultTitle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/columns", s.handleColumns)
		r.Get("/values", s.handleValues)
		r.Get("/rows", s.handleRows)
		r.Get("/summary", s.handleSummary)
		r.Get("/sankey", s.handleSankey)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
