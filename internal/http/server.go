// Package http exposes the calculators and the boat shortlist as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"boatshare/internal/config"
	applog "boatshare/internal/log"
	"boatshare/internal/middleware/ratelimit"
	"boatshare/internal/middleware/security"
	"boatshare/internal/middleware/trace"
	"boatshare/internal/services"
)

// Deps are the services the handlers call into.
type Deps struct {
	Financing *services.FinancingService
	Boats     *services.BoatService
	// Ready reports whether every backing dependency answers. Nil means always ready.
	Ready    func(ctx context.Context) error
	Defaults config.Defaults
}

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	deps     Deps
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware and returns a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		deps:     deps,
		logger:   logger,
		detector: detector,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		tracer: trace.NewMiddleware(detector.ExtractClientIP),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Middleware(detector.ExtractClientIP, s.rateLimited))
	api.HandleFunc("/financing", s.handleFinancing).Methods(http.MethodPost)
	api.HandleFunc("/financing/schedule", s.handleSchedule).Methods(http.MethodPost)
	api.HandleFunc("/financing/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/owners/resize", s.handleResizeOwners).Methods(http.MethodPost)
	api.HandleFunc("/budget", s.handleBudget).Methods(http.MethodGet)
	api.HandleFunc("/boats", s.handleListBoats).Methods(http.MethodGet)
	api.HandleFunc("/boats", s.handleProposeBoat).Methods(http.MethodPost)
	api.HandleFunc("/boats/{id}", s.handleGetBoat).Methods(http.MethodGet)
	api.HandleFunc("/boats/{id}", s.handleRemoveBoat).Methods(http.MethodDelete)
	api.HandleFunc("/boats/{id}/vote", s.handleVote).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Retry-After"},
		// Wildcard origins must not be combined with credentials.
		AllowCredentials: false,
	})

	var h http.Handler = r
	h = c.Handler(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)
	h = s.tracer.Middleware(h)
	h = applog.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

// Shutdown stops accepting requests and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		s.logger.Fields(ctx, level, "HTTP server stopped",
			applog.NewFields().WithOperation(applog.OpShutdown).WithError(err))
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
