// Package web provides the HTTP server and handlers for the search UI.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/buyside/internal/config"
	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/session"
	"github.com/JonMunkholm/buyside/internal/web/middleware"
)

// Server is the HTTP server for the search application.
type Server struct {
	service  *core.Service
	sessions *session.Store
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance. Background cleanup started for
// rate limiting stops when ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, service *core.Service, sessions *session.Store) *Server {
	s := &Server{
		service:  service,
		sessions: sessions,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes(ctx)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(ctx context.Context) {
	general := func(next http.Handler) http.Handler { return next }
	summary := general
	if s.cfg.Rate.Enabled {
		general = s.rateLimit(newRateLimiter(ctx, s.cfg.Rate.RequestsPerMinute))
		summary = s.rateLimit(newRateLimiter(ctx, s.cfg.Rate.SummaryLimit))
	}

	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(general)
		r.Get("/export/results.csv", s.handleExportResults)

		// Routes that read or write the session tag log
		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleIndex)
			r.Post("/tags", s.handleAddTag)
			r.With(summary).Post("/summary", s.handleSummary)
			r.Get("/export/tags.csv", s.handleExportTags)
		})
	})

	s.router.Route("/api", func(r chi.Router) {
		if origins := s.cfg.Security.AllowedOrigins; len(origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   origins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Use(general)

		r.Get("/names", s.handleAPINames)
		r.Get("/search", s.handleAPISearch)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/tags", s.handleAPITags)
			r.Post("/tags", s.handleAPIAddTag)
			r.With(summary).Post("/summary", s.handleAPISummary)
		})

		r.With(middleware.APIKeyAuth(&s.cfg.Security)).Post("/reload", s.handleAPIReload)
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

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Pages use inline styles only; no scripts are served
			if enableCSP {
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'; form-action 'self'; frame-ancestors 'none'")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status   string                    `json:"status"`
	Dataset  core.DatasetStats         `json:"dataset"`
	Sessions int                       `json:"sessions"`
	Summary  core.SummaryLimiterStatus `json:"summary"`
	Uptime   string                    `json:"uptime"`
}

var startedAt = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Dataset:  s.service.Stats(),
		Sessions: s.sessions.Len(),
		Summary:  s.service.LimiterStatus(),
		Uptime:   time.Since(startedAt).Round(time.Second).String(),
	})
}
