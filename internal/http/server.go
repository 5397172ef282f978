// Package http serves the budget reports as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"foyer/internal/core"
	"foyer/internal/log"
	"foyer/internal/middleware/ratelimit"
	"foyer/internal/middleware/security"
	"foyer/internal/middleware/trace"
)

// BudgetAPI is the service the handlers call into.
type BudgetAPI interface {
	MonthlyReport(ctx context.Context, period core.Period) (core.Report, error)
	Ratio(ctx context.Context) (core.Household, core.Ratio, error)
	Provisions(ctx context.Context) (core.CategoryTotals, error)
	FixedExpenses(ctx context.Context) (core.CategoryTotals, error)
	RequestExport(ctx context.Context, period core.Period) (int64, error)
	Invalidate(period core.Period)
	InvalidateAll()
}

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server. Zero values are usable.
type Options struct {
	Logger *log.Logger
	// Checks are pinged by /readyz, keyed by the name reported back.
	Checks map[string]Pinger
	// ExportsPerMinute bounds export requests per client.
	ExportsPerMinute int
	Now              func() time.Time
}

type Server struct {
	http.Server
	api          BudgetAPI
	checks       map[string]Pinger
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, api BudgetAPI, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		api:     api,
		checks:  opts.Checks,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ExportsPerMinute}),
		tracer:  trace.NewMiddleware(security.ClientIP, logger),
		now:     opts.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("DELETE /api/report", s.handleInvalidate)
	mux.HandleFunc("GET /api/ratio", s.handleRatio)
	mux.HandleFunc("GET /api/provisions", s.handleProvisions)
	mux.HandleFunc("GET /api/fixed-expenses", s.handleFixedExpenses)

	limitExports := s.limiter.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many export requests", RequestID: trace.GetRequestID(r.Context())})
	})
	mux.Handle("POST /api/report/export", limitExports(http.HandlerFunc(s.handleExport)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and then the HTTP server. It is safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics returns the request counters of the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}
