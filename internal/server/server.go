// Package server exposes the dashboard over HTTP: the single-page UI,
// the JSON data API it polls, CSV upload, the PNG chart export, and
// the refresh-history endpoint. All data endpoints are views over the
// refresher's current snapshot; filter changes rerun the pure pipeline
// per request, never mutating the loaded table.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/communitypulse/pulse-dashboard/internal/dataset"
	"github.com/communitypulse/pulse-dashboard/internal/pipeline"
	"github.com/communitypulse/pulse-dashboard/internal/platform/config"
	"github.com/communitypulse/pulse-dashboard/internal/platform/observability"
	"github.com/communitypulse/pulse-dashboard/internal/present"
	"github.com/communitypulse/pulse-dashboard/internal/present/chartpng"
	"github.com/communitypulse/pulse-dashboard/internal/refresh"
	db "github.com/communitypulse/pulse-dashboard/internal/storage"
)

const (
	pageTitle = "CommunityPulse - AI Trend Detection"

	historyLimit = 50

	paramMinScore    = "min_score"
	paramCommunities = "communities"
	paramTopN        = "top_n"

	uploadStatusOK       = "ok"
	uploadStatusRejected = "rejected"
	uploadStatusLimited  = "rate_limited"
)

// HistoryStore lists archived refresh runs. nil disables /api/history.
type HistoryStore interface {
	ListRecentSnapshots(ctx context.Context, limit int) ([]db.RefreshSnapshot, error)
}

// Handler serves the dashboard routes.
type Handler struct {
	cfg       *config.Config
	refresher *refresh.Refresher
	history   HistoryStore
	renderer  *Renderer
	limiter   *rate.Limiter
	logger    *zerolog.Logger
	mux       *http.ServeMux
}

// NewHandler wires the dashboard routes. history may be nil.
func NewHandler(cfg *config.Config, refresher *refresh.Refresher, history HistoryStore, logger *zerolog.Logger) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("renderer init: %w", err)
	}

	h := &Handler{
		cfg:       cfg,
		refresher: refresher,
		history:   history,
		renderer:  renderer,
		limiter:   rate.NewLimiter(rate.Limit(cfg.UploadRateRPS), cfg.UploadBurst),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /api/dashboard", h.handleDashboard)
	mux.HandleFunc("GET /api/chart.png", h.handleChartPNG)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("POST /api/upload", h.handleUpload)
	mux.HandleFunc("DELETE /api/upload", h.handleClearUpload)
	h.mux = mux

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := h.renderer.RenderDashboard(w, DashboardPageData{
		Title:          pageTitle,
		MinScore:       h.cfg.MinTrendingScore,
		RefreshSeconds: int(h.cfg.RefreshInterval.Seconds()),
		TopN:           h.cfg.TopN,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("dashboard page render failed")
	}
}

// dashboardResponse is the JSON payload the page polls.
type dashboardResponse struct {
	present.View

	RunID       string    `json:"run_id"`
	SourceLabel string    `json:"source_label"`
	TotalPosts  int       `json:"total_posts"`
	TotalLabel  string    `json:"total_label"`
	Communities []string  `json:"communities"`
	GeneratedAt time.Time `json:"generated_at"`
	CacheHit    bool      `json:"cache_hit"`
	LastError   string    `json:"last_error,omitempty"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, view, ok := h.currentView(w, r)
	if !ok {
		return
	}

	resp := dashboardResponse{
		View:        view,
		RunID:       snap.RunID,
		SourceLabel: snap.SourceLabel,
		TotalPosts:  snap.Table.Len(),
		TotalLabel:  present.FormatCount(snap.Table.Len()),
		Communities: snap.Table.Communities(),
		GeneratedAt: snap.GeneratedAt,
		CacheHit:    snap.CacheHit,
	}

	if err, _ := h.refresher.LastError(); err != nil {
		resp.LastError = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.currentView(w, r)
	if !ok {
		return
	}

	png, err := chartpng.Bars(view.Bars, "Trending Score (Top Posts)")
	if err != nil {
		if errors.Is(err, chartpng.ErrNoData) {
			writeJSONError(w, http.StatusNotFound, "no posts match the current filters")

			return
		}

		h.logger.Error().Err(err).Msg("chart render failed")
		writeJSONError(w, http.StatusInternalServerError, "chart render failed")

		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, http.StatusNotFound, "refresh archive is not configured")

		return
	}

	snaps, err := h.history.ListRecentSnapshots(r.Context(), historyLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("history query failed")
		writeJSONError(w, http.StatusInternalServerError, "history query failed")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		observability.UploadsReceived.WithLabelValues(uploadStatusLimited).Inc()
		writeJSONError(w, http.StatusTooManyRequests, "too many uploads, slow down")

		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.UploadMaxBytes))
	if err != nil {
		observability.UploadsReceived.WithLabelValues(uploadStatusRejected).Inc()
		writeJSONError(w, http.StatusRequestEntityTooLarge, "upload too large")

		return
	}

	// Validate before swapping the active source so a broken upload
	// never takes down a working dashboard.
	table, err := dataset.LoadBytes(data, "upload")
	if err != nil {
		observability.UploadsReceived.WithLabelValues(uploadStatusRejected).Inc()
		writeJSONError(w, http.StatusBadRequest, loadErrorMessage(err))

		return
	}

	h.refresher.SetUpload(data, "upload")

	if err := h.refresher.RunOnce(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("refresh after upload failed")
	}

	observability.UploadsReceived.WithLabelValues(uploadStatusOK).Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":        table.Len(),
		"communities": table.Communities(),
	})
}

func (h *Handler) handleClearUpload(w http.ResponseWriter, r *http.Request) {
	h.refresher.ClearUpload()

	if err := h.refresher.RunOnce(r.Context()); err != nil {
		writeJSONError(w, http.StatusBadGateway, loadErrorMessage(err))

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"source": h.cfg.DataPath})
}

// currentView resolves the snapshot and reruns the pipeline with any
// request-level filter overrides. Writes the error response itself
// when no data is available.
func (h *Handler) currentView(w http.ResponseWriter, r *http.Request) (*refresh.Snapshot, present.View, bool) {
	snap, ok := h.refresher.Snapshot()
	if !ok {
		if err, _ := h.refresher.LastError(); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, loadErrorMessage(err))
		} else {
			writeJSONError(w, http.StatusServiceUnavailable, "no data loaded yet")
		}

		return nil, present.View{}, false
	}

	cfg := h.pipelineConfig(r)
	view := present.Build(pipeline.Run(snap.Table, cfg), h.cfg.TitleMaxLen)

	return snap, view, true
}

// pipelineConfig builds the run config from query parameters, falling
// back to the configured defaults. An explicitly empty communities
// parameter means "no restriction".
func (h *Handler) pipelineConfig(r *http.Request) pipeline.Config {
	cfg := h.refresher.DefaultPipelineConfig()
	query := r.URL.Query()

	if raw := query.Get(paramMinScore); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.MinScore = clampScore(v)
		}
	}

	if query.Has(paramCommunities) {
		cfg.Communities = splitCommunities(query.Get(paramCommunities))
	}

	if raw := query.Get(paramTopN); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.TopN = v
		}
	}

	return cfg
}

func clampScore(v float64) float64 {
	if v < config.MinScoreFloor {
		return config.MinScoreFloor
	}

	if v > config.MinScoreCeil {
		return config.MinScoreCeil
	}

	return v
}

func splitCommunities(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}

// loadErrorMessage maps load failures to user-visible messages, naming
// the missing columns when that is the cause.
func loadErrorMessage(err error) string {
	var missing *dataset.MissingColumnsError
	if errors.As(err, &missing) {
		return missing.Error()
	}

	var parse *dataset.ParseError
	if errors.As(err, &parse) {
		return parse.Error()
	}

	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
