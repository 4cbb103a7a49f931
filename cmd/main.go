package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/metrica/internal/bot"
	"github.com/UnknownOlympus/metrica/internal/config"
	"github.com/UnknownOlympus/metrica/internal/form"
	"github.com/UnknownOlympus/metrica/internal/metrics"
	"github.com/UnknownOlympus/metrica/internal/payroll"
	"github.com/UnknownOlympus/metrica/internal/repository"
	"github.com/UnknownOlympus/metrica/internal/server"
	"github.com/UnknownOlympus/metrica/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	if err = repository.Migrate(ctx, dtb); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	checks := map[string]server.Pinger{"database": dtb}

	// Form sessions live in memory unless redis is configured, which also lets several replicas share them.
	var (
		sessions session.Store
		locker   session.Locker
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		const redisTimeout = 5 * time.Second
		pingCtx, cancel := context.WithTimeout(ctx, redisTimeout)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}

		sessions = session.NewRedisStore(redisClient, cfg.Session.TTL)
		locker = session.NewRedisLocker(redisClient, cfg.Session.LockTTL)
		checks["redis"] = server.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	default:
		memory := session.NewMemoryStore(cfg.Session.TTL)
		go memory.Run(ctx, cfg.Session.TTL/2) //nolint:mnd // sweep twice per ttl
		sessions = memory
		locker = session.NewLocalLocker()
	}

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb)

	forms := form.NewEngine(logger, repo, form.WithPhoneRegion(cfg.PhoneRegion))
	payer := payroll.NewManager(logger, repo)

	metricaBot, err := bot.NewBot(logger, bot.Dependencies{
		Store:    repo,
		Forms:    forms,
		Sessions: sessions,
		Locker:   locker,
		Payer:    payer,
		Metrics:  appMetrics,
	}, cfg.Token, cfg.PollerTimeout, cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"session_store", cfg.Session.Store, "allowed_users", len(cfg.AllowedUsers))

	// Start the bot in a goroutine to allow main to listen for signals.
	go metricaBot.Start()

	// Start the monitoring server
	router := server.NewRouter(server.NewHealthChecker(logger, checks), reg)
	go server.StartMonitoringServer(ctx, logger, router, cfg.MonitoringPort)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully.
	metricaBot.Stop()

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
