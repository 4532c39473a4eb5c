// Package api serves mysterygraph over HTTP.
//
// Stateless routes check, derive and render a document sent in the request
// body. The /mysteries routes persist documents in a [storage.Store] and
// announce each save through a [notify.Publisher].
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mysterygraph/pkg/notify"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
	"github.com/matzehuels/mysterygraph/pkg/storage"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Options configures a Server. Runner and Store are required.
type Options struct {
	Runner       *pipeline.Runner
	Store        storage.Store
	Publisher    notify.Publisher
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server holds the API dependencies.
type Server struct {
	runner    *pipeline.Runner
	store     storage.Store
	publisher notify.Publisher
	logger    *log.Logger
	maxBody   int64
}

// New creates a server. A nil Publisher drops reports and a nil Logger
// discards output.
func New(opts Options) (*Server, error) {
	if opts.Runner == nil {
		return nil, errors.New("api: runner is required")
	}
	if opts.Store == nil {
		return nil, errors.New("api: store is required")
	}
	s := &Server{
		runner:    opts.Runner,
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		maxBody:   opts.MaxBodyBytes,
	}
	if s.publisher == nil {
		s.publisher = notify.NoopPublisher{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/schema", s.handleSchema)
	r.Post("/validate", s.handleValidate)
	r.Post("/graph", s.handleGraph)
	r.Post("/render", s.handleRender)

	r.Route("/mysteries", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
			r.Get("/source", s.handleSource)
			r.Get("/graph", s.handleStoredGraph)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
