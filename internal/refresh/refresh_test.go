package refresh

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitypulse/pulse-dashboard/internal/dataset"
	"github.com/communitypulse/pulse-dashboard/internal/platform/config"
	db "github.com/communitypulse/pulse-dashboard/internal/storage"
)

const testCSV = `title,subreddit,trending_score,score,num_comments
Hot post,aww,91,1000,50
Mild post,news,65,200,10
Cold post,aww,20,5,0
`

type captureArchiver struct {
	snaps []db.RefreshSnapshot
}

func (c *captureArchiver) InsertRefreshSnapshot(_ context.Context, snap db.RefreshSnapshot) error {
	c.snaps = append(c.snaps, snap)
	return nil
}

func newTestConfig(t *testing.T, csv string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trending_analysis.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	return &config.Config{
		DataPath:         path,
		MinTrendingScore: 60,
		TopN:             20,
		TitleMaxLen:      80,
		RefreshInterval:  time.Minute,
	}
}

func newTestRefresher(cfg *config.Config, archive Archiver) *Refresher {
	logger := zerolog.Nop()

	return New(cfg, dataset.NewCache(), archive, &logger)
}

func TestRunOnce(t *testing.T) {
	cfg := newTestConfig(t, testCSV)
	r := newTestRefresher(cfg, nil)

	_, ok := r.Snapshot()
	assert.False(t, ok)

	require.NoError(t, r.RunOnce(context.Background()))

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.NotEmpty(t, snap.RunID)
	assert.False(t, snap.CacheHit)
	assert.Equal(t, 3, snap.Table.Len())
	assert.Equal(t, 2, snap.View.Summary.FilteredPosts)
	assert.InDelta(t, 78.0, snap.View.Summary.MeanTrendingScore, 1e-9)

	// Second run of unchanged bytes is served from the cache and
	// yields a fresh run id.
	require.NoError(t, r.RunOnce(context.Background()))

	second, ok := r.Snapshot()
	require.True(t, ok)
	assert.True(t, second.CacheHit)
	assert.NotEqual(t, snap.RunID, second.RunID)
}

func TestRunOnceFailureKeepsSnapshot(t *testing.T) {
	cfg := newTestConfig(t, testCSV)
	r := newTestRefresher(cfg, nil)

	require.NoError(t, r.RunOnce(context.Background()))
	good, _ := r.Snapshot()

	cfg.DataPath = filepath.Join(t.TempDir(), "gone.csv")

	err := r.RunOnce(context.Background())
	require.Error(t, err)

	// The last good snapshot still serves.
	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, good.RunID, snap.RunID)

	lastErr, at := r.LastError()
	require.Error(t, lastErr)
	assert.False(t, at.IsZero())
}

func TestRunOnceClearsErrorOnSuccess(t *testing.T) {
	cfg := newTestConfig(t, testCSV)
	goodPath := cfg.DataPath
	cfg.DataPath = filepath.Join(t.TempDir(), "gone.csv")

	r := newTestRefresher(cfg, nil)
	require.Error(t, r.RunOnce(context.Background()))

	cfg.DataPath = goodPath
	require.NoError(t, r.RunOnce(context.Background()))

	lastErr, _ := r.LastError()
	assert.NoError(t, lastErr)
}

func TestUploadBecomesActiveSource(t *testing.T) {
	cfg := newTestConfig(t, testCSV)
	r := newTestRefresher(cfg, nil)

	upload := "title,subreddit,trending_score,score,num_comments\nUploaded,games,99,1,1\n"
	r.SetUpload([]byte(upload), "upload")

	require.NoError(t, r.RunOnce(context.Background()))

	snap, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "upload", snap.SourceLabel)
	assert.Equal(t, 1, snap.Table.Len())

	r.ClearUpload()
	require.NoError(t, r.RunOnce(context.Background()))

	snap, _ = r.Snapshot()
	assert.Equal(t, cfg.DataPath, snap.SourceLabel)
}

func TestArchiveReceivesRunSummary(t *testing.T) {
	cfg := newTestConfig(t, testCSV)
	archive := &captureArchiver{}
	r := newTestRefresher(cfg, archive)

	require.NoError(t, r.RunOnce(context.Background()))

	require.Len(t, archive.snaps, 1)
	snap := archive.snaps[0]
	assert.Equal(t, 3, snap.TotalPosts)
	assert.Equal(t, 2, snap.FilteredPosts)
	assert.InDelta(t, 78.0, snap.MeanTrendingScore, 1e-9)
	assert.Equal(t, 2, snap.SelectedCommunities)
	assert.NotEmpty(t, snap.RunID)
}
