package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/dal"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/metrics"
)

// JeepFetcher answers catalog queries; empty arguments are not applied
type JeepFetcher interface {
	FetchJeeps(ctx context.Context, model, trim string) ([]dal.Jeep, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Option configures the HTTP server
type Option func(*httpServer)

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(h *httpServer) {
		h.log = l
	}
}

// WithPinger enables the database check on /health
func WithPinger(p Pinger) Option {
	return func(h *httpServer) {
		h.db = p
	}
}

// WithMetrics records request metrics and serves them on /metrics
func WithMetrics(c *metrics.Collector) Option {
	return func(h *httpServer) {
		h.metrics = c
	}
}

// WithTimeouts sets the read and write timeouts of the returned *http.Server
func WithTimeouts(read, write time.Duration) Option {
	return func(h *httpServer) {
		h.readTimeout = read
		h.writeTimeout = write
	}
}

// NewHTTPServer returns a new HTTP server
func NewHTTPServer(addr string, svc JeepFetcher, opts ...Option) *http.Server {
	server := newHTTPServer(svc, opts...)
	return &http.Server{
		Addr:              addr,
		Handler:           server.handler(),
		ReadTimeout:       server.readTimeout,
		ReadHeaderTimeout: server.readTimeout,
		WriteTimeout:      server.writeTimeout,
	}
}

type httpServer struct {
	svc          JeepFetcher
	db           Pinger
	metrics      *metrics.Collector
	log          *slog.Logger
	now          func() time.Time
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func newHTTPServer(svc JeepFetcher, opts ...Option) *httpServer {
	h := &httpServer{
		svc:          svc,
		log:          slog.Default(),
		now:          time.Now,
		readTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *httpServer) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/jeeps", h.FetchJeeps).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
		r.Use(captureRoute)
	}
	r.NotFoundHandler = http.HandlerFunc(h.routeNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	return r
}

// handler wraps the router so recovered panics and unmatched routes are
// still logged and counted
func (h *httpServer) handler() http.Handler {
	var next http.Handler = h.recovery(h.router())
	if h.metrics != nil {
		next = h.metricsMiddleware(next)
	}
	return h.requestID(h.accessLog(next))
}
