package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/communitypulse/pulse-dashboard/internal/app"
	"github.com/communitypulse/pulse-dashboard/internal/platform/config"
	db "github.com/communitypulse/pulse-dashboard/internal/storage"
)

func main() {
	once := flag.Bool("once", false, "Run a single refresh and exit")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var database *db.DB

	if cfg.ArchiveEnabled() {
		poolOpts := db.PoolOptions{
			MaxConns:          cfg.DBMaxConnections,
			MinConns:          cfg.DBMinConnections,
			MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
			MaxConnLifetime:   cfg.DBMaxConnLifetime,
			HealthCheckPeriod: cfg.DBHealthCheckPeriod,
		}

		database, err = db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	application := app.New(cfg, database, &logger)

	if *once {
		if err := application.RunOnce(ctx); err != nil {
			logger.Fatal().Err(err).Msg("refresh failed")
		}

		return
	}

	// Serve HTTP in the background; the refresh loop owns the
	// foreground.
	go func() {
		if err := application.StartServer(ctx); err != nil {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	if err := application.RunRefresher(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
