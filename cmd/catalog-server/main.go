package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/rl1809/car-build/internal/adapter/handler"
	"github.com/rl1809/car-build/internal/adapter/handler/pb"
	"github.com/rl1809/car-build/internal/adapter/storage"
	"github.com/rl1809/car-build/internal/config"
	"github.com/rl1809/car-build/internal/core/service"
	"github.com/rl1809/car-build/internal/obs"
	"github.com/rl1809/car-build/internal/port"
	"github.com/rl1809/car-build/internal/resilience"
)

const serviceName = "catalog"

func main() {
	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", serviceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "carbuild-catalog",
			Endpoint:      cfg.OTLPEndpoint,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialise tracer")
		}
		defer flushTracer(logger, shutdown)
	}

	retry := resilience.RetryPolicy{
		MaxAttempts: cfg.ConnectMaxAttempts,
		Delay:       cfg.ConnectDelay,
		Exponential: cfg.ConnectExponential,
	}

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mysql")
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := retry.Do(ctx, "mysql", logger, mysqlAdapter.Ping); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect mysql")
	}
	logger.Info().Msg("connected to mysql")

	checks := map[string]handler.ReadinessCheck{"mysql": mysqlAdapter.Ping}

	// Initialize Redis
	var (
		rdb   *redis.Client
		cache port.CatalogCache
	)
	if cfg.CacheEnabled() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(redisOpts)
		if cfg.TracingEnabled {
			if err := redisotel.InstrumentTracing(rdb); err != nil {
				logger.Error().Err(err).Msg("instrument redis tracing")
			}
		}

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.CatalogCacheTTL)
		if err := retry.Do(ctx, "redis", logger, redisAdapter.Ping); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Info().Dur("ttl", cfg.CatalogCacheTTL).Msg("connected to redis")

		cache = redisAdapter
		checks["redis"] = redisAdapter.Ping
	} else {
		logger.Info().Msg("catalog cache disabled")
	}

	catalogService := service.NewCatalogService(mysqlAdapter, cache, logger)

	// Initialize gRPC server
	metrics := obs.NewRPCMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	grpcServer := grpc.NewServer(obs.ServerOptions(logger, metrics, cfg.TracingEnabled)...)
	pb.RegisterCatalogServiceServer(grpcServer, handler.NewCatalogGRPCHandler(catalogService))

	lis, err := net.Listen("tcp", cfg.CatalogGRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.CatalogGRPCAddr).Msg("failed to listen")
	}

	go func() {
		logger.Info().Str("addr", cfg.CatalogGRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Initialize ops HTTP server
	opsServer := &http.Server{
		Addr:              cfg.CatalogMetricsAddr,
		Handler:           handler.NewOpsRouter(serviceName, promhttp.Handler(), checks),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.CatalogMetricsAddr).Msg("ops HTTP server listening")
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

	if rdb != nil {
		_ = rdb.Close()
	}
	_ = db.Close()
	logger.Info().Msg("connections closed")
}

func flushTracer(logger zerolog.Logger, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown error")
	}
}
