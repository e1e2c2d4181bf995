package main

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nikolayk812/agromarket/internal/config"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/events"
	"github.com/nikolayk812/agromarket/internal/httpx"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/nikolayk812/agromarket/internal/postgres"
	"github.com/nikolayk812/agromarket/internal/redisx"
	"github.com/nikolayk812/agromarket/internal/repository"
	"github.com/nikolayk812/agromarket/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("validate config")
	}

	logger = logger.Level(cfg.LogLevel).With().Str("service", cfg.ServiceName).Logger()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("run")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	var (
		publisher port.EventPublisher = events.Nop{}
		idem      port.IdempotencyStore
		rdb       *redis.Client
	)

	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024, logger)
		producer.Start()
		defer producer.Close()
		publisher = producer
	} else {
		logger.Warn().Msg("KAFKA_BROKERS is empty, order events are dropped")
	}

	if cfg.RedisAddr != "" {
		rdb, err = redisx.New(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		idem = redisx.NewIdempotencyStore(rdb)
	} else {
		logger.Warn().Msg("REDIS_ADDR is empty, checkout idempotency keys are ignored")
	}

	deps := service.Deps{
		Store:       repository.NewStore(pool),
		Events:      publisher,
		Idempotency: idem,
		Logger:      logger,
	}

	handlers := make([]*httpx.MarketplaceHandler, 0, 2)
	for _, market := range []domain.Marketplace{domain.Fertilizer, domain.Produce} {
		engine := service.NewEngine(market.WithCurrency(cfg.Currency), deps)
		handlers = append(handlers, httpx.HandlerFor(engine))
	}

	router := httpx.NewRouter(httpx.RouterConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
		Health:         healthCheck(pool, rdb),
	}, logger, handlers...)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func healthCheck(pool *pgxpool.Pool, rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	}
}
