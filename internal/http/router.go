package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/syedarman1/screenme-sub001/internal/app"
	"github.com/syedarman1/screenme-sub001/internal/observability"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()
	h := &handlers{app: application}

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.HTTPMiddleware(application.Metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: application.Cfg.Service.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !application.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/conversation-turn", h.conversationTurn)
		r.Post("/transcribe", h.transcribe)
		r.Post("/interview-prep", h.interviewPrep)
		r.Post("/chat/stream", h.chatStream)
		r.Post("/speech", h.speech)
	})

	return r
}

// echoRequestID returns the request id to the caller for support reports.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(middleware.RequestIDHeader, middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}
