package grpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T, ready bool) (*Server, grpc_health_v1.HealthClient) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := New(func() bool { return ready })
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.GracefulStop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return s, grpc_health_v1.NewHealthClient(conn)
}

func check(t *testing.T, client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("health check %q: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealth_Ready(t *testing.T) {
	_, client := startServer(t, true)

	if got := check(t, client, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected overall SERVING, got %v", got)
	}
	if got := check(t, client, ServiceName); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected %s SERVING, got %v", ServiceName, got)
	}
}

func TestHealth_NotReady(t *testing.T) {
	s, client := startServer(t, false)

	if got := check(t, client, ""); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected overall SERVING, got %v", got)
	}
	if got := check(t, client, ServiceName); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected %s NOT_SERVING, got %v", ServiceName, got)
	}

	s.SetReady(true)
	if got := check(t, client, ServiceName); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected %s SERVING after SetReady, got %v", ServiceName, got)
	}
}
