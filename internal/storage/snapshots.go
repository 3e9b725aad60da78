package db

import (
	"context"
	"fmt"
	"time"
)

// RefreshSnapshot records the headline numbers of one refresh run.
type RefreshSnapshot struct {
	RunID               string    `json:"run_id"`
	SourceLabel         string    `json:"source_label"`
	TotalPosts          int       `json:"total_posts"`
	FilteredPosts       int       `json:"filtered_posts"`
	MeanTrendingScore   float64   `json:"mean_trending_score"`
	SelectedCommunities int       `json:"selected_communities"`
	CacheHit            bool      `json:"cache_hit"`
	Duration            float64   `json:"duration_seconds"`
	CreatedAt           time.Time `json:"created_at"`
}

// InsertRefreshSnapshot archives one refresh run.
func (db *DB) InsertRefreshSnapshot(ctx context.Context, snap RefreshSnapshot) error {
	const query = `
		INSERT INTO refresh_snapshots
			(run_id, source_label, total_posts, filtered_posts,
			 mean_trending_score, selected_communities, cache_hit, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Pool.Exec(ctx, query,
		snap.RunID,
		snap.SourceLabel,
		snap.TotalPosts,
		snap.FilteredPosts,
		snap.MeanTrendingScore,
		snap.SelectedCommunities,
		snap.CacheHit,
		snap.Duration,
	)
	if err != nil {
		return fmt.Errorf("insert refresh snapshot: %w", err)
	}

	return nil
}

// ListRecentSnapshots returns the newest snapshots first.
func (db *DB) ListRecentSnapshots(ctx context.Context, limit int) ([]RefreshSnapshot, error) {
	const query = `
		SELECT run_id, source_label, total_posts, filtered_posts,
		       mean_trending_score, selected_communities, cache_hit,
		       duration_seconds, created_at
		FROM refresh_snapshots
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list refresh snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []RefreshSnapshot

	for rows.Next() {
		var snap RefreshSnapshot

		if err := rows.Scan(
			&snap.RunID,
			&snap.SourceLabel,
			&snap.TotalPosts,
			&snap.FilteredPosts,
			&snap.MeanTrendingScore,
			&snap.SelectedCommunities,
			&snap.CacheHit,
			&snap.Duration,
			&snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan refresh snapshot: %w", err)
		}

		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh snapshots: %w", err)
	}

	return snaps, nil
}
