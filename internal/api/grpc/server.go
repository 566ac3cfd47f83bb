// Package grpcapi serves the gRPC health protocol so orchestrators can probe
// the service the same way they probe other gRPC workloads.
package grpcapi

import (
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/syedarman1/screenme-sub001/internal/observability"
)

// ServiceName is the health-check service name for the AI-backed API.
const ServiceName = "interview.assist.v1.InterviewAssist"

// Server wraps a gRPC server exposing health and reflection.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// New builds the server and sets the initial serving status. ready reports
// whether AI calls can be attempted.
func New(ready func() bool) *Server {
	g := grpc.NewServer(grpc.UnaryInterceptor(observability.UnaryServerInterceptor()))

	// Register gRPC health check service
	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(g, h)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(g)

	s := &Server{grpc: g, health: h}
	s.SetReady(ready())
	return s
}

// SetReady updates the serving status of the overall server and the API service.
func (s *Server) SetReady(ready bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ready {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until the listener fails or the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server started")
	return s.grpc.Serve(lis)
}

// GracefulStop marks everything NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
