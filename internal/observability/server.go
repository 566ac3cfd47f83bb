// Package observability provides the metrics and probe HTTP server, request
// instrumentation, and tracing setup.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// ReadinessFunc reports whether the service can serve traffic.
type ReadinessFunc func() bool

// Server provides HTTP endpoints for observability.
type Server struct {
	server *http.Server
	addr   string
}

// NewServer creates a new observability HTTP server. gatherer defaults to
// the global Prometheus registry when nil.
func NewServer(addr string, gatherer prometheus.Gatherer, ready ReadinessFunc) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		addr: addr,
		server: &http.Server{
			Addr:         addr,
			Handler:      NewHandler(gatherer, ready),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewHandler builds the /metrics, /healthz and /readyz mux.
func NewHandler(gatherer prometheus.Gatherer, ready ReadinessFunc) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return mux
}

// ListenAndServe blocks serving observability endpoints.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.addr).Msg("Starting observability HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Observability HTTP server error")
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down observability HTTP server")
	return s.server.Shutdown(ctx)
}
