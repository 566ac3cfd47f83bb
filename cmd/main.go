package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	grpcapi "github.com/syedarman1/screenme-sub001/internal/api/grpc"
	"github.com/syedarman1/screenme-sub001/internal/app"
	"github.com/syedarman1/screenme-sub001/internal/config"
	httpapi "github.com/syedarman1/screenme-sub001/internal/http"
	"github.com/syedarman1/screenme-sub001/internal/observability"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Init(logging.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		Service:     cfg.Service.Name,
		Environment: cfg.Service.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName:  cfg.Service.Name,
		Environment:  cfg.Service.Environment,
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		OTLPHeaders:  cfg.Observability.OTLPHeaders,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build application")
	}
	if err := application.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start application")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	obsServer := observability.NewServer(":"+cfg.Observability.MetricsPort, nil, application.Ready)
	grpcServer := grpcapi.New(application.Ready)

	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("Failed to listen for gRPC")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP API server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(obsServer.ListenAndServe)
	g.Go(func() error {
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := obsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server exited with error")
		exitCode = 1
	}

	application.Shutdown()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Warn().Err(err).Msg("Tracer flush failed")
	}
	cancel()
	stop()
	os.Exit(exitCode)
}
