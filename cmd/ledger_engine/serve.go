package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/ledger_engine/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/adapters/posthog"
	"github.com/SscSPs/ledger_engine/internal/adapters/pubsub"
	"github.com/SscSPs/ledger_engine/internal/adapters/redis"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, slog.Default())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, database.MigrateUp, logger); err != nil {
			return err
		}
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)

	sinks := []portssvc.AuditSink{services.NewRepositorySink(repos.AuditLog)}
	if cfg.PubSubProjectID != "" {
		sink, err := pubsub.NewAuditSink(ctx, cfg.PubSubProjectID, cfg.PubSubAuditTopic)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("Failed to close audit publisher", slog.String("error", err.Error()))
			}
		}()
		sinks = append(sinks, sink)
		logger.Info("Audit entries will be published", slog.String("topic", cfg.PubSubAuditTopic))
	}
	if cfg.PosthogAPIKey != "" {
		sink, err := posthog.NewAuditSink(cfg.PosthogAPIKey, cfg.PosthogEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("Failed to flush analytics events", slog.String("error", err.Error()))
			}
		}()
		sinks = append(sinks, sink)
	}
	recorder := services.NewAuditRecorder(services.AuditRecorderConfig{
		QueueSize:    cfg.AuditQueueSize,
		MaxRetries:   cfg.AuditMaxRetries,
		RetryBackoff: cfg.AuditRetryBackoff,
	}, logger, sinks...)

	var (
		redisClient *goredis.Client
		locker      portssvc.Locker
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		locker = redis.NewLocker(redisClient, "ledger_engine:")
		logger.Info("Redis connected; ratio calculations use distributed locks")
	}

	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	svc := services.NewServiceContainer(cfg, repos, recorder, locker)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	handlers.RegisterRoutes(r, cfg, svc, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Error("Audit queue not fully drained", slog.String("error", err.Error()))
	}
	return nil
}
