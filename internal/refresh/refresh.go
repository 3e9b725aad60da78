// Package refresh drives the periodic pipeline re-execution. Each run
// loads the active source (local file, or the latest upload) through
// the fingerprint cache, reruns the pure pipeline, and swaps the
// result in as the current snapshot. A failed run keeps the previous
// snapshot and surfaces its error; the next tick retries from scratch.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/communitypulse/pulse-dashboard/internal/dataset"
	"github.com/communitypulse/pulse-dashboard/internal/pipeline"
	"github.com/communitypulse/pulse-dashboard/internal/platform/config"
	"github.com/communitypulse/pulse-dashboard/internal/platform/observability"
	"github.com/communitypulse/pulse-dashboard/internal/platform/worker"
	"github.com/communitypulse/pulse-dashboard/internal/present"
	db "github.com/communitypulse/pulse-dashboard/internal/storage"
)

const (
	logFieldRunID  = "run_id"
	logFieldSource = "source"

	archiveTimeout = 5 * time.Second
)

// Snapshot is the output of the last successful refresh run. The table
// is retained so request-time filter changes can rerun the pure
// pipeline without reloading.
type Snapshot struct {
	RunID       string
	Table       *dataset.Table
	View        present.View
	SourceLabel string
	CacheHit    bool
	GeneratedAt time.Time
}

// Archiver persists run summaries. Satisfied by the storage layer;
// nil when no archive is configured.
type Archiver interface {
	InsertRefreshSnapshot(ctx context.Context, snap db.RefreshSnapshot) error
}

// Refresher owns the active source and the current snapshot.
type Refresher struct {
	cfg     *config.Config
	cache   *dataset.Cache
	archive Archiver
	logger  *zerolog.Logger

	mu            sync.RWMutex
	current       *Snapshot
	lastErr       error
	lastErrAt     time.Time
	uploaded      []byte
	uploadedLabel string
}

// New creates a refresher. archive may be nil.
func New(cfg *config.Config, cache *dataset.Cache, archive Archiver, logger *zerolog.Logger) *Refresher {
	return &Refresher{
		cfg:     cfg,
		cache:   cache,
		archive: archive,
		logger:  logger,
	}
}

// DefaultPipelineConfig is the filter state applied when a request
// carries no overrides.
func (r *Refresher) DefaultPipelineConfig() pipeline.Config {
	return pipeline.Config{
		MinScore:    r.cfg.MinTrendingScore,
		Communities: r.cfg.AllowedCommunities,
		TopN:        r.cfg.TopN,
	}
}

// Run starts the ticker loop. Blocks until ctx is canceled.
func (r *Refresher) Run(ctx context.Context) error {
	return worker.TickerLoop(ctx, worker.TickerConfig{
		Name:       "refresh",
		Interval:   r.cfg.RefreshInterval,
		OnTick:     r.Tick,
		RunOnStart: true,
		Logger:     r.logger,
	})
}

// Tick executes one refresh run, logging instead of returning errors
// so the loop keeps its cadence.
func (r *Refresher) Tick(ctx context.Context) {
	defer worker.RecoverPanic(r.logger, "refresh run")

	if err := r.RunOnce(ctx); err != nil {
		r.logger.Error().Err(err).Msg("refresh run failed")
	}
}

// RunOnce performs a single load-and-recompute pass.
func (r *Refresher) RunOnce(ctx context.Context) error {
	runID := uuid.New().String()
	started := time.Now()

	table, cacheHit, err := r.loadActive()

	observability.DatasetLoadDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		observability.DatasetLoads.WithLabelValues(r.activeLabel(), "error").Inc()
		observability.RefreshRuns.WithLabelValues("error").Inc()
		r.setError(err)

		return err
	}

	observability.DatasetLoads.WithLabelValues(table.SourceLabel, "ok").Inc()
	observability.DatasetRows.Set(float64(table.Len()))

	result := pipeline.Run(table, r.DefaultPipelineConfig())
	view := present.Build(result, r.cfg.TitleMaxLen)

	snap := &Snapshot{
		RunID:       runID,
		Table:       table,
		View:        view,
		SourceLabel: table.SourceLabel,
		CacheHit:    cacheHit,
		GeneratedAt: time.Now(),
	}

	r.mu.Lock()
	r.current = snap
	r.lastErr = nil
	r.mu.Unlock()

	duration := time.Since(started)

	observability.RefreshRuns.WithLabelValues("ok").Inc()
	observability.RefreshDuration.Observe(duration.Seconds())
	observability.FilteredPosts.Set(float64(result.Summary.FilteredPosts))
	observability.MeanTrendingScore.Set(result.Summary.MeanTrendingScore)
	observability.SelectedCommunities.Set(float64(result.Summary.SelectedCommunities))

	r.archiveRun(ctx, snap, result, duration)

	r.logger.Debug().
		Str(logFieldRunID, runID).
		Str(logFieldSource, table.SourceLabel).
		Bool("cache_hit", cacheHit).
		Int("rows", table.Len()).
		Int("filtered", result.Summary.FilteredPosts).
		Dur("duration", duration).
		Msg("refresh run complete")

	return nil
}

// loadActive loads the latest upload when one exists, the configured
// file otherwise.
func (r *Refresher) loadActive() (*dataset.Table, bool, error) {
	r.mu.RLock()
	data := r.uploaded
	label := r.uploadedLabel
	r.mu.RUnlock()

	if data != nil {
		return r.cache.Load(data, label)
	}

	return r.cache.LoadFile(r.cfg.DataPath)
}

func (r *Refresher) activeLabel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.uploaded != nil {
		return r.uploadedLabel
	}

	return r.cfg.DataPath
}

func (r *Refresher) archiveRun(ctx context.Context, snap *Snapshot, result pipeline.Result, duration time.Duration) {
	if r.archive == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	err := r.archive.InsertRefreshSnapshot(archiveCtx, db.RefreshSnapshot{
		RunID:               snap.RunID,
		SourceLabel:         snap.SourceLabel,
		TotalPosts:          snap.Table.Len(),
		FilteredPosts:       result.Summary.FilteredPosts,
		MeanTrendingScore:   result.Summary.MeanTrendingScore,
		SelectedCommunities: result.Summary.SelectedCommunities,
		CacheHit:            snap.CacheHit,
		Duration:            duration.Seconds(),
	})
	if err != nil {
		// Archiving is best-effort; the snapshot already serves.
		r.logger.Warn().Err(err).Str(logFieldRunID, snap.RunID).Msg("failed to archive refresh snapshot")
	}
}

func (r *Refresher) setError(err error) {
	r.mu.Lock()
	r.lastErr = err
	r.lastErrAt = time.Now()
	r.mu.Unlock()
}

// Snapshot returns the last successful snapshot, or false when no run
// has succeeded yet.
func (r *Refresher) Snapshot() (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current, r.current != nil
}

// LastError returns the most recent run failure, cleared by the next
// successful run.
func (r *Refresher) LastError() (error, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastErr, r.lastErrAt
}

// SetUpload makes uploaded CSV bytes the active source for subsequent
// runs. Callers validate the bytes first so a bad upload never
// replaces a working source.
func (r *Refresher) SetUpload(data []byte, label string) {
	r.mu.Lock()
	r.uploaded = data
	r.uploadedLabel = label
	r.mu.Unlock()
}

// ClearUpload reverts the active source to the configured file.
func (r *Refresher) ClearUpload() {
	r.mu.Lock()
	r.uploaded = nil
	r.uploadedLabel = ""
	r.mu.Unlock()
}
