package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"streamtally/internal/cache"
	"streamtally/internal/core"
	"streamtally/internal/log"
	"streamtally/internal/middleware/ratelimit"
	"streamtally/internal/middleware/security"
	"streamtally/internal/middleware/trace"
	"streamtally/internal/report"
)

// LogQueries is the read side of the stream log repository.
type LogQueries interface {
	IdentityFor(date, streamer, title string) (string, error)
	Get(id string) (core.StreamLog, bool)
	RecentLogs() []core.StreamLog
	MonthlySummary(year, month0 int) (core.Summary, bool)
	YearlySummary(year int) (core.Summary, bool)
	AvailableYears() []int
	AvailableMonths(year int) []core.MonthOption
	All() []core.StreamLog
}

// LogCommands is the write side, usually the stream service.
type LogCommands interface {
	CreateOrGetHeader(ctx context.Context, h core.Header) (string, bool, error)
	AppendActivity(ctx context.Context, id string, p core.ActivityPayload) (core.Activity, error)
}

// Options tune the server. Zero values pick defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// TrustedProxies are CIDRs allowed to set the client IP headers.
	TrustedProxies []string
	// Ready reports whether dependencies can serve traffic. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	queries  LogQueries
	commands LogCommands
	ready    func(ctx context.Context) error
	logger   *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// Rendered daily reports keyed by log id and last update.
	reports      *cache.LRUCache[report.Document]
	caches       *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, q LogQueries, c LogCommands, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		queries:  q,
		commands: c,
		ready:    opts.Ready,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		reports:  cache.NewLRUCache[report.Document](64, 10*time.Minute),
		caches:   cache.NewManager(logger.WithComponent(log.ComponentHTTP)),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP, s.detector.DetectSuspiciousRequest)

	s.caches.Register(s.reports)
	s.caches.Register(s.limiter.Visitors())
	s.caches.StartCleanup(5 * time.Minute)

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later")
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/logs", func(r chi.Router) {
			r.Post("/", s.handleCreateLog)
			r.Get("/identity", s.handleIdentity)
			r.Get("/recent", s.handleRecentLogs)
			r.Get("/{id}", s.handleGetLog)
			r.Post("/{id}/activities", s.handleAppendActivity)
			r.Get("/{id}/report.pdf", s.handleDailyReport)
		})
		r.Route("/analytics/years", func(r chi.Router) {
			r.Get("/", s.handleYears)
			r.Get("/{year}", s.handleYearlySummary)
			r.Get("/{year}/report.pdf", s.handleYearlyReport)
			r.Get("/{year}/months", s.handleMonths)
			r.Get("/{year}/months/{month}", s.handleMonthlySummary)
			r.Get("/{year}/months/{month}/report.pdf", s.handleMonthlyReport)
		})
		r.Get("/export", s.handleExport)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
