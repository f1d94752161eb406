package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
	"github.com/ziadkadry99/dailybrief/internal/viewer"
)

// Config holds server configuration.
type Config struct {
	Port int
	// DataDir is the local static host root served under /data/. Empty
	// when documents come from a remote base URL.
	DataDir string
	// Template is the host page. Empty uses the embedded default.
	Template []byte
	Options  viewer.Options
	// Live enables the /ws/live reload socket and its page script.
	Live     bool
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server renders the brief viewer per request.
type Server struct {
	cfg        Config
	src        fetch.Source
	metrics    *fetch.Metrics
	logger     *slog.Logger
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server reading documents from src. metrics may be nil.
func New(cfg Config, src fetch.Source, metrics *fetch.Metrics, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := page.New(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		src:     src,
		metrics: metrics,
		logger:  logger,
	}
	if cfg.Live {
		s.hub = NewHub(logger)
	}

	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	if s.hub != nil {
		r.Get("/ws/live", s.hub.ServeHTTP)
	}

	if s.cfg.DataDir != "" {
		r.Handle("/data/*", http.FileServer(http.Dir(s.cfg.DataDir)))
	}

	// Rendering and document APIs stop waiting on slow sources.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handlePage)
		r.Get("/api/manifest", s.handleManifest)
		r.Get("/api/brief", s.handleBrief)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the live-reload hub, or nil when live reload is off.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("dailybrief server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes live connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// newViewer builds a viewer over a fresh host page.
func (s *Server) newViewer(source string) (*viewer.Viewer, error) {
	doc, err := page.New(s.cfg.Template)
	if err != nil {
		return nil, err
	}
	opts := s.cfg.Options
	opts.Source = source
	opts.Selected = source
	opts.Logger = s.logger
	return viewer.New(doc, s.src, opts), nil
}
