package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/goloan/internal/adapter/http"
	"github.com/iho/goloan/internal/adapter/http/handler"
	"github.com/iho/goloan/internal/adapter/http/middleware"
	"github.com/iho/goloan/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/goloan/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goloan/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/goloan/internal/adapter/repository/sqlite"
	"github.com/iho/goloan/internal/infrastructure/config"
	"github.com/iho/goloan/internal/infrastructure/eventpublisher"
	"github.com/iho/goloan/internal/infrastructure/idgen"
	"github.com/iho/goloan/internal/infrastructure/logger"
	"github.com/iho/goloan/internal/infrastructure/metrics"
	"github.com/iho/goloan/internal/infrastructure/postgres"
	"github.com/iho/goloan/internal/infrastructure/redis"
	"github.com/iho/goloan/internal/infrastructure/retry"
	"github.com/iho/goloan/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// storage groups the repositories of one backend.
type storage struct {
	txManager    usecase.TransactionManager
	loanRepo     usecase.LoanRepository
	paymentRepo  usecase.PaymentRepository
	customerRepo usecase.CustomerRepository
	outboxRepo   usecase.OutboxRepository
	health       []handler.HealthCheck
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:     cfg.DatabaseURL,
			MaxConns:        cfg.DatabaseMaxConns,
			MinConns:        cfg.DatabaseMinConns,
			MaxConnLifetime: time.Hour,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		return &storage{
			txManager:    postgresRepo.NewTxManager(pool),
			loanRepo:     postgresRepo.NewLoanRepository(pool),
			paymentRepo:  postgresRepo.NewPaymentRepository(pool),
			customerRepo: postgresRepo.NewCustomerRepository(pool),
			outboxRepo:   postgresRepo.NewOutboxRepository(pool),
			health:       []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}},
			close:        pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqliteRepo.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

		return &storage{
			txManager:    sqliteRepo.NewTxManager(db),
			loanRepo:     sqliteRepo.NewLoanRepository(db),
			paymentRepo:  sqliteRepo.NewPaymentRepository(db),
			customerRepo: sqliteRepo.NewCustomerRepository(db),
			outboxRepo:   sqliteRepo.NewOutboxRepository(db),
			health:       []handler.HealthCheck{{Name: "sqlite", Check: db.PingContext}},
			close:        func() { db.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage, data is lost on restart")

		return &storage{
			txManager:    memory.NewTxManager(store),
			loanRepo:     memory.NewLoanRepository(store),
			paymentRepo:  memory.NewPaymentRepository(store),
			customerRepo: memory.NewCustomerRepository(store),
			outboxRepo:   memory.NewOutboxRepository(store),
			close:        func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// app is a fully wired server that has not started listening yet.
type app struct {
	handler   http.Handler
	publisher *eventpublisher.EventPublisher
	limiter   *middleware.RateLimiter
	close     func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	closers := []func(){store.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	m := metrics.New(reg)
	opts := []usecase.Option{
		usecase.WithMetrics(m),
		usecase.WithLogger(log),
		usecase.WithRetrier(retry.NewRetrier(cfg.RetryMaxAttempts, log)),
	}

	health := store.health
	var idempotencyStore usecase.IdempotencyStore
	var eventSink eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		log.Info().Msg("connected to redis")

		opts = append(opts, usecase.WithCache(redisRepo.NewCache(client), cfg.CacheTTL))
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		eventSink = redisRepo.NewEventPublisher(client, cfg.OutboxChannel)
		health = append(health, handler.HealthCheck{Name: "redis", Check: redisPing(client)})
	}

	idGen := idgen.NewULIDGenerator()
	loanUC := usecase.NewLoanUseCase(store.txManager, store.loanRepo, store.customerRepo, store.outboxRepo, idGen, opts...)
	paymentUC := usecase.NewPaymentUseCase(store.txManager, store.loanRepo, store.paymentRepo, store.outboxRepo, idGen, opts...)
	ledgerUC := usecase.NewLedgerUseCase(store.loanRepo, store.paymentRepo, opts...)
	customerUC := usecase.NewCustomerUseCase(store.txManager, store.customerRepo, store.loanRepo, store.paymentRepo, opts...)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.OnLimit(m.RateLimitHits.Inc)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanHandler:      handler.NewLoanHandler(loanUC, paymentUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		CustomerHandler:  handler.NewCustomerHandler(customerUC),
		HealthHandler:    handler.NewHealthHandler(health...),
		Logger:           log,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      limiter,
		Metrics:          middleware.NewMetricsMiddleware(m.HTTPRequests, m.HTTPDuration),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outboxRepo,
		Publisher:  eventSink,
		Metrics:    m,
		Logger:     log.With().Str("component", "outbox").Logger(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})

	return &app{
		handler:   router,
		publisher: publisher,
		limiter:   limiter,
		close:     closeAll,
	}, nil
}

func redisPing(client *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log, newRegistry())
	if err != nil {
		return err
	}
	defer a.close()

	ln, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.HTTPPort, err)
	}

	return serve(ctx, cfg, log, a, ln)
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, a *app, ln net.Listener) error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		a.publisher.Start(workerCtx)
	}()

	if a.limiter != nil {
		go cleanupLimiters(workerCtx, a.limiter)
	}

	server := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("storage", cfg.StorageDriver).Msg("starting server")
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	cancelWorkers()
	<-publisherDone

	log.Info().Msg("server stopped")
	return nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(limiterIdleTimeout)
		}
	}
}
