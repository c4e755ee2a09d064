// Package trace assigns request ids and logs the start and end of every
// HTTP request.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"streamtally/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID is echoed on every response.
	HeaderRequestID = "X-Request-ID"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

// Middleware handles request tracing and logging
type Middleware struct {
	extractIP  func(*http.Request) string
	suspicious func(*http.Request) bool
	logger     *log.Logger
	http       *log.StructuredLogger
	metrics    Metrics
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       atomic.Int64
	AverageResponseTime atomic.Int64 // microseconds, exponentially smoothed
}

// NewMiddleware creates a new trace middleware. suspicious may be nil.
func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string, suspicious func(*http.Request) bool) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{
		extractIP:  extractIP,
		suspicious: suspicious,
		logger:     logger.WithComponent(log.ComponentTrace),
		http:       log.NewStructuredLogger(logger),
	}
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, m.logger.With(log.NewFields().WithRequestID(requestID).ToSlice()...))
		r = r.WithContext(ctx)

		if m.suspicious != nil && m.suspicious(r) {
			m.logger.WarnContext(ctx, "Suspicious request",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		m.http.LogHTTPStart(ctx, r, clientIP)
		m.metrics.TotalRequests.Add(1)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		durationMs := time.Since(start).Milliseconds()
		m.observe(durationMs * 1000)
		m.http.LogHTTPEnd(ctx, r, status, durationMs, clientIP)
	})
}

func (m *Middleware) observe(us int64) {
	for {
		old := m.metrics.AverageResponseTime.Load()
		next := us
		if old != 0 {
			next = old + (us-old)/8
		}
		if m.metrics.AverageResponseTime.CompareAndSwap(old, next) {
			return
		}
	}
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	TotalRequests       int64
	AverageResponseTime int64
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Snapshot {
	return Snapshot{
		TotalRequests:       m.metrics.TotalRequests.Load(),
		AverageResponseTime: m.metrics.AverageResponseTime.Load(),
	}
}
