// Package app provides the application bootstrap and runtime
// orchestration: it wires the load cache, the refresh worker, the
// optional Postgres archive, and the HTTP surface together.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/communitypulse/pulse-dashboard/internal/dataset"
	"github.com/communitypulse/pulse-dashboard/internal/platform/config"
	"github.com/communitypulse/pulse-dashboard/internal/platform/observability"
	"github.com/communitypulse/pulse-dashboard/internal/refresh"
	"github.com/communitypulse/pulse-dashboard/internal/server"
	db "github.com/communitypulse/pulse-dashboard/internal/storage"
)

// App holds the application dependencies.
type App struct {
	cfg       *config.Config
	database  *db.DB
	logger    *zerolog.Logger
	refresher *refresh.Refresher
}

// New creates an App. database may be nil when the archive is
// disabled.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	var archive refresh.Archiver
	if database != nil {
		archive = database
	}

	return &App{
		cfg:       cfg,
		database:  database,
		logger:    logger,
		refresher: refresh.New(cfg, dataset.NewCache(), archive, logger),
	}
}

// StartServer runs the HTTP server (dashboard, API, health, metrics)
// until ctx is canceled.
func (a *App) StartServer(ctx context.Context) error {
	handler, err := server.NewHandler(a.cfg, a.refresher, a.historyStore(), a.logger)
	if err != nil {
		return fmt.Errorf("dashboard handler init: %w", err)
	}

	var pinger observability.Pinger
	if a.database != nil {
		pinger = a.database
	}

	return observability.NewServerWithDashboard(pinger, a.cfg.HTTPPort, handler, a.logger).Start(ctx)
}

// RunRefresher runs the periodic refresh loop until ctx is canceled.
func (a *App) RunRefresher(ctx context.Context) error {
	return a.refresher.Run(ctx)
}

// RunOnce performs a single refresh run and returns; used for smoke
// checks and cron-style invocation.
func (a *App) RunOnce(ctx context.Context) error {
	return a.refresher.RunOnce(ctx)
}

func (a *App) historyStore() server.HistoryStore {
	if a.database == nil {
		return nil
	}

	return a.database
}
