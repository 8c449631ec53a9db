package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/car-build/internal/adapter/handler"
	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/config"
	"github.com/rl1809/car-build/internal/obs"
)

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", "gateway").Logger()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "carbuild-gateway",
			Endpoint:      cfg.OTLPEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialise tracer")
		}
		defer flushTracer(logger, shutdown)
	}

	upstream := obs.NewUpstreamMetrics(cfg.MetricsNamespace, nil)

	catalogConn, err := dial(cfg.CatalogServiceTarget, "catalog", upstream, cfg.TracingEnabled)
	if err != nil {
		logger.Fatal().Err(err).Str("target", cfg.CatalogServiceTarget).Msg("failed to create catalog client")
	}
	defer catalogConn.Close()

	pricingConn, err := dial(cfg.PricingServiceTarget, "pricing", upstream, cfg.TracingEnabled)
	if err != nil {
		logger.Fatal().Err(err).Str("target", cfg.PricingServiceTarget).Msg("failed to create pricing client")
	}
	defer pricingConn.Close()

	httpHandler := handler.NewHTTPHandler(
		pb.NewCatalogServiceClient(catalogConn),
		pb.NewPricingServiceClient(pricingConn),
		cfg.UpstreamTimeout,
	)
	router := handler.NewRouter(httpHandler, handler.RouterOptions{
		Logger:         logger,
		Metrics:        obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil),
		MetricsHandler: promhttp.Handler(),
		Tracing:        cfg.TracingEnabled,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.GatewayHTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.GatewayHTTPAddr).
			Str("catalog", cfg.CatalogServiceTarget).
			Str("pricing", cfg.PricingServiceTarget).
			Msg("HTTP gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	logger.Info().Msg("HTTP server stopped")
}

// dial creates a lazily connecting client for one backing service.
func dial(target, service string, metrics *obs.UpstreamMetrics, tracing bool) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		pb.WithJSONCodec(),
		grpc.WithChainUnaryInterceptor(
			obs.RequestIDClientInterceptor(),
			obs.UpstreamObs{Metrics: metrics, Service: service}.UnaryClientInterceptor(),
		),
	}
	if tracing {
		opts = append(opts, grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	}
	return grpc.NewClient(target, opts...)
}

func flushTracer(logger zerolog.Logger, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown error")
	}
}
