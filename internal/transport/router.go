// Package transport serves the MCP endpoint over streamable HTTP, next to
// Prometheus metrics and a health endpoint.
package transport

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/stash-mcp-server/metrics"
)

const (
	MCPPath     = "/mcp"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"

	DefaultMaxBodySize = 1 << 20
)

// Options configures the HTTP surface
type Options struct {
	RateLimit   float64 // per client requests per second on MCPPath, 0 disables limiting
	RateBurst   int
	MaxBodySize int64 // request body cap on MCPPath, 0 uses DefaultMaxBodySize

	// Connected reports the Stash connection state for /healthz
	Connected func() bool
}

// Router routes the MCP handler and the operational endpoints
type Router struct {
	chi.Router
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRouter mounts mcpHandler at MCPPath behind rate and body limits.
func NewRouter(mcpHandler http.Handler, opts Options, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	rt := &Router{Router: chi.NewRouter(), logger: logger}
	if opts.RateLimit > 0 {
		rt.limiter = NewRateLimiter(opts.RateLimit, opts.RateBurst)
	}

	rt.Use(middleware.Recoverer)
	rt.Use(observe)

	rt.Get(HealthPath, health(opts.Connected))
	rt.Method(http.MethodGet, MetricsPath, promhttp.Handler())

	rt.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.rateLimit)
		}
		r.Use(limitBody(opts.MaxBodySize))
		r.Handle(MCPPath, mcpHandler)
	})
	return rt
}

// Close releases the rate limiter
func (rt *Router) Close() {
	if rt.limiter != nil {
		rt.limiter.Close()
	}
}

func (rt *Router) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rt.limiter.Allow(ip) {
			metrics.RateLimitRejections.Inc()
			rt.logger.Warn("Rate limit exceeded", "client", ip, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// observe records request counts and latency per route
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(code)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type healthStatus struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
}

func health(connected func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{Status: "ok"}
		if connected != nil {
			status.Connected = connected()
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
