// Package web provides the HTTP server for the table view.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/dataview/internal/config"
	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/view"
	mw "github.com/JonMunkholm/dataview/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options are the collaborators of a Server. Nil fields get defaults built
// from the config.
type Options struct {
	Loader  *core.Loader
	Limiter *core.LoadLimiter
	History core.HistoryStore
}

// Server is the HTTP server for the viewer.
type Server struct {
	cfg      *config.Config
	loader   *core.Loader
	limiter  *core.LoadLimiter
	history  core.HistoryStore
	sessions *sessionStore
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server and starts its session sweeper. Call Shutdown
// to stop it.
func NewServer(cfg *config.Config, opts Options) *Server {
	if opts.Loader == nil {
		opts.Loader = core.NewLoader(cfg.Upload.MaxFileSize, nil)
	}
	if opts.Limiter == nil {
		opts.Limiter = core.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	}
	if opts.History == nil {
		opts.History = core.NewMemoryHistory(core.DefaultHistoryLimit)
	}

	engine := view.NewEngine(cfg.View.PageSize, cfg.View.Placeholder)

	s := &Server{
		cfg:      cfg,
		loader:   opts.Loader,
		limiter:  opts.Limiter,
		history:  opts.History,
		sessions: newSessionStore(engine, cfg.Session.TTL, cfg.Session.CookieName),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	go s.sessions.run(cfg.Session.SweepInterval)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(s.sessions.middleware)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Dataset
		r.Post("/load", s.handleLoad)
		r.Delete("/load", s.handleClear)
		r.Post("/clear", s.handleClear)

		// View state
		r.Get("/view", s.handleView)
		r.Post("/view/filter", s.handleFilter)
		r.Post("/view/sort/{column}", s.handleSort)
		r.Post("/view/page/{page}", s.handlePage)

		r.Get("/export", s.handleExport)
		r.Get("/history", s.handleHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight loads and stops
// the session sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.sessions.close()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// Inline styles only; the page ships no scripts.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
