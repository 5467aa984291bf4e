package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bascanada/proposalviewer/pkg/config"
	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/source"
)

// Catalog is the document store the server filters against.
type Catalog interface {
	source.Source
	Invalidate()
}

// Server represents the API server instance.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	logger         *slog.Logger
	port           string
	host           string
	eventBroker    *EventBroker
	metrics        *metrics
	configPath     string
	openapiSpec    []byte
	allowedOrigins []string

	mu         sync.RWMutex
	catalog    Catalog
	filterOpts []filter.Option
}

type Option func(*Server)

// WithOpenAPISpec serves spec at /openapi.yaml.
func WithOpenAPISpec(spec []byte) Option {
	return func(s *Server) { s.openapiSpec = spec }
}

// WithFilterOptions sets parse options applied to every filter request.
func WithFilterOptions(opts ...filter.Option) Option {
	return func(s *Server) { s.filterOpts = opts }
}

// WithConfigPath enables ReloadConfig from path.
func WithConfigPath(path string) Option {
	return func(s *Server) { s.configPath = path }
}

// WithAllowedOrigins restricts cross-origin requests to origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// NewServer creates a new API server instance.
func NewServer(host, port string, catalog Catalog, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		catalog:     catalog,
		logger:      logger,
		port:        port,
		host:        host,
		eventBroker: NewEventBroker(logger),
		metrics:     newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// FilterOptions returns the parse options of a config.
func FilterOptions(cfg *config.Config) []filter.Option {
	if cfg.Filter.LegacyRange {
		return []filter.Option{filter.WithLegacyRange()}
	}
	return nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(s.recoveryMiddleware, s.corsMiddleware, middleware.RealIP, s.requestIDMiddleware, s.loggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, ErrCodeNotFound, "No route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method "+r.Method+" is not allowed")
	})

	r.Get("/health", s.healthHandler)
	r.Get("/openapi.yaml", s.openapiHandler)
	r.Get("/documents", s.listDocumentsHandler)
	r.Get("/documents/{name}", s.getDocumentHandler)
	r.Route("/filter", func(r chi.Router) {
		r.Post("/projects", s.filterProjectsHandler)
		r.Post("/team", s.filterTeamHandler)
		r.Post("/explain", s.explainHandler)
	})
	r.Get("/fields", s.fieldsHandler)
	r.Get("/events", s.eventsHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	s.router = r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Events() *EventBroker {
	return s.eventBroker
}

func (s *Server) currentCatalog() (Catalog, []filter.Option) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.filterOpts
}

// ReloadConfig reloads the config file and swaps in a catalog built from it.
func (s *Server) ReloadConfig(ctx context.Context) error {
	if s.configPath == "" {
		return errors.New("server was started without a config file")
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	catalog, err := source.NewCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.catalog
	s.catalog = catalog
	s.filterOpts = FilterOptions(cfg)
	s.mu.Unlock()

	if closer, ok := old.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close previous catalog", "err", err)
		}
	}
	return nil
}

// InvalidateDocuments drops cached documents so the next request rereads them.
func (s *Server) InvalidateDocuments() {
	catalog, _ := s.currentCatalog()
	catalog.Invalidate()
}

// Start runs the HTTP server and blocks until a signal is received.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	// Create listener first to get the actual assigned port (important when port=0)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", listener.Addr().String())
		fmt.Printf("Server listening on port %d\n", actualPort)
		serverErrors <- s.httpServer.Serve(listener)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		s.logger.Info("shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", "err", err)
			return s.httpServer.Close()
		}
		s.logger.Info("server shutdown gracefully")
	}

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// WatchDirs returns the document directories of the current catalog.
func (s *Server) WatchDirs() []string {
	catalog, _ := s.currentCatalog()
	if d, ok := catalog.(interface{ WatchDirs() []string }); ok {
		return d.WatchDirs()
	}
	return nil
}
