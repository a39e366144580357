package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatordesk/channelsync/internal/config"
	"github.com/creatordesk/channelsync/internal/crypto"
	"github.com/creatordesk/channelsync/internal/database"
	"github.com/creatordesk/channelsync/internal/logging"
	"github.com/creatordesk/channelsync/internal/redis"
	"github.com/creatordesk/channelsync/internal/server"
	"github.com/creatordesk/channelsync/internal/syncer"
	"github.com/creatordesk/channelsync/internal/youtube"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	var cryptoSvc crypto.Service = crypto.NoopService{}
	if cfg.TokenEncryptionKey != "" {
		var err error
		cryptoSvc, err = crypto.NewAESGCMService(cfg.TokenEncryptionKey)
		if err != nil {
			slog.Error("Failed to create crypto service", "error", err)
			os.Exit(1)
		}
	}

	credentialRepo := database.NewCredentialRepo(pool, cryptoSvc)
	profileRepo := database.NewProfileRepo(pool)
	metricsRepo := database.NewMetricsRepo(pool)
	demographicsRepo := database.NewDemographicsRepo(pool)
	performanceRepo := database.NewPerformanceRepo(pool)

	provider := youtube.NewClient(clock)
	oauthCfg := youtube.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	policy := syncer.NewPolicy(syncer.UniformThresholds(cfg.FreshnessWindow), clock)
	syncLock := redis.NewSyncLock(redisClient, cfg.SyncLockTTL)

	orchestrator := syncer.NewOrchestrator(
		credentialRepo,
		profileRepo,
		metricsRepo,
		demographicsRepo,
		performanceRepo,
		provider,
		policy,
		syncLock,
		clock,
		cfg.ProviderTimeout,
	)

	srv := server.NewServer(cfg, orchestrator, oauthCfg, credentialRepo, pool, redisClient)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
