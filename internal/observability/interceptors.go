package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
)

// HTTPMiddleware records request metrics and logs one line per request.
func HTTPMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordHTTPRequest(route, r.Method, strconv.Itoa(status), duration.Seconds())

			log.Info().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Msg("HTTP request")
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// UnaryServerInterceptor returns a gRPC unary interceptor for logging.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		st, _ := status.FromError(err)

		log.Debug().
			Str("method", info.FullMethod).
			Str("code", st.Code().String()).
			Dur("duration", duration).
			Msg("gRPC unary call")

		return resp, err
	}
}
