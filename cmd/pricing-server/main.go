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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/rl1809/car-build/internal/adapter/handler"
	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/adapter/idgen"
	"github.com/rl1809/car-build/internal/config"
	"github.com/rl1809/car-build/internal/core/service"
	"github.com/rl1809/car-build/internal/obs"
)

const serviceName = "pricing"

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", serviceName).Logger()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "carbuild-pricing",
			Endpoint:      cfg.OTLPEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialise tracer")
		}
		defer flushTracer(logger, shutdown)
	}

	orderService := service.NewOrderService(idgen.UUIDv7{})

	// Initialize gRPC server
	metrics := obs.NewRPCMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	grpcServer := grpc.NewServer(obs.ServerOptions(logger, metrics, cfg.TracingEnabled)...)
	pb.RegisterPricingServiceServer(grpcServer, handler.NewPricingGRPCHandler(orderService))

	lis, err := net.Listen("tcp", cfg.PricingGRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.PricingGRPCAddr).Msg("failed to listen")
	}

	go func() {
		logger.Info().Str("addr", cfg.PricingGRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Initialize ops HTTP server
	opsServer := &http.Server{
		Addr:              cfg.PricingMetricsAddr,
		Handler:           handler.NewOpsRouter(serviceName, promhttp.Handler(), nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.PricingMetricsAddr).Msg("ops HTTP server listening")
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = opsServer.Shutdown(shutdownCtx)

	grpcServer.GracefulStop()
	logger.Info().Msg("gRPC server stopped")
}

func flushTracer(logger zerolog.Logger, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown error")
	}
}
