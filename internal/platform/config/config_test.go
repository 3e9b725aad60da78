package config

import (
	"testing"
	"time"
)

const testErrLoad = "Load() error = %v"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.DataPath != "trending_analysis.csv" {
		t.Errorf("DataPath = %q, want %q", cfg.DataPath, "trending_analysis.csv")
	}

	if cfg.MinTrendingScore != 60 {
		t.Errorf("MinTrendingScore = %v, want 60", cfg.MinTrendingScore)
	}

	if cfg.RefreshInterval != 60*time.Second {
		t.Errorf("RefreshInterval = %v, want 60s", cfg.RefreshInterval)
	}

	if cfg.TopN != 20 {
		t.Errorf("TopN = %d, want 20", cfg.TopN)
	}

	if cfg.TitleMaxLen != 80 {
		t.Errorf("TitleMaxLen = %d, want 80", cfg.TitleMaxLen)
	}

	if cfg.ArchiveEnabled() {
		t.Error("ArchiveEnabled() = true without POSTGRES_DSN")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/posts.csv")
	t.Setenv("MIN_TRENDING_SCORE", "75.5")
	t.Setenv("ALLOWED_COMMUNITIES", "aww,news")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/pulse")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.DataPath != "/data/posts.csv" {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}

	if cfg.MinTrendingScore != 75.5 {
		t.Errorf("MinTrendingScore = %v, want 75.5", cfg.MinTrendingScore)
	}

	if len(cfg.AllowedCommunities) != 2 || cfg.AllowedCommunities[0] != "aww" {
		t.Errorf("AllowedCommunities = %v", cfg.AllowedCommunities)
	}

	if !cfg.ArchiveEnabled() {
		t.Error("ArchiveEnabled() = false with POSTGRES_DSN set")
	}
}

func TestLoadClampsRanges(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(cfg *Config) bool
	}{
		{
			name:  "min score above ceiling",
			key:   "MIN_TRENDING_SCORE",
			value: "150",
			check: func(cfg *Config) bool { return cfg.MinTrendingScore == MinScoreCeil },
		},
		{
			name:  "min score below floor",
			key:   "MIN_TRENDING_SCORE",
			value: "-5",
			check: func(cfg *Config) bool { return cfg.MinTrendingScore == MinScoreFloor },
		},
		{
			name:  "refresh interval too short",
			key:   "REFRESH_INTERVAL",
			value: "1s",
			check: func(cfg *Config) bool { return cfg.RefreshInterval == RefreshIntervalMin },
		},
		{
			name:  "refresh interval too long",
			key:   "REFRESH_INTERVAL",
			value: "48h",
			check: func(cfg *Config) bool { return cfg.RefreshInterval == RefreshIntervalMax },
		},
		{
			name:  "non-positive top n",
			key:   "TOP_N",
			value: "0",
			check: func(cfg *Config) bool { return cfg.TopN == 20 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf(testErrLoad, err)
			}

			if !tt.check(cfg) {
				t.Errorf("clamp failed for %s=%s", tt.key, tt.value)
			}
		})
	}
}
