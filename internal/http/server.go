// Package http serves the expense dashboard, the chart data endpoint and
// the expense form.
package http

import (
	"context"
	"net/http"
	"time"

	"gonum.org/v1/plot/vg"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	ports "gastos/internal/sheets"
)

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr      string
	Store     ports.Store
	Publisher services.Publisher
	Logger    *log.Logger

	ChartWidth  vg.Length
	ChartHeight vg.Length

	// WriteLimit caps POST /expenses per client and minute.
	WriteLimit int
}

type Server struct {
	http.Server
	store    ports.Store
	expenses *services.ExpenseService
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	chartWidth  vg.Length
	chartHeight vg.Length

	now func() time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:       opts.Store,
		expenses:    services.NewExpenseService(opts.Store, opts.Publisher, logger),
		logger:      logger,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.WriteLimit}),
		detector:    security.NewDetector(),
		tracer:      trace.NewMiddleware(logger),
		chartWidth:  opts.ChartWidth,
		chartHeight: opts.ChartHeight,
		now:         time.Now,
	}

	limitWrites := s.limiter.Middleware(s.detector.ClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET "+core.ChartDataPath, s.handleChartData)
	mux.HandleFunc("GET /chart.svg", s.handleChartImage)
	mux.Handle("POST /expenses", limitWrites(http.HandlerFunc(s.handleCreateExpense)))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Handler(h)
	s.Handler = h

	return s
}

// Shutdown stops background work and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// RequestsServed returns the number of requests that went through the server.
func (s *Server) RequestsServed() int64 {
	return s.tracer.TotalRequests()
}
