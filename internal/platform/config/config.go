// Package config loads service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Bounds for user-tunable settings. Out-of-range values clamp rather
// than fail: a misconfigured slider value should degrade, not take the
// dashboard down.
const (
	MinScoreFloor = 0.0
	MinScoreCeil  = 100.0

	RefreshIntervalMin = 10 * time.Second
	RefreshIntervalMax = 3600 * time.Second
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	// DataPath is the CSV read on each refresh until an upload
	// replaces it as the active source.
	DataPath string `env:"DATA_PATH" envDefault:"trending_analysis.csv"`

	// PostgresDSN enables the refresh-history archive when set.
	PostgresDSN string `env:"POSTGRES_DSN"`

	MinTrendingScore   float64       `env:"MIN_TRENDING_SCORE" envDefault:"60"`
	AllowedCommunities []string      `env:"ALLOWED_COMMUNITIES" envSeparator:","`
	RefreshInterval    time.Duration `env:"REFRESH_INTERVAL" envDefault:"60s"`
	TopN               int           `env:"TOP_N" envDefault:"20"`
	TitleMaxLen        int           `env:"TITLE_MAX_LEN" envDefault:"80"`

	UploadRateRPS  float64 `env:"UPLOAD_RATE_RPS" envDefault:"1"`
	UploadBurst    int     `env:"UPLOAD_BURST" envDefault:"3"`
	UploadMaxBytes int64   `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`

	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.clamp()

	return cfg, nil
}

// clamp pulls tunables back into their documented ranges.
func (c *Config) clamp() {
	if c.MinTrendingScore < MinScoreFloor {
		c.MinTrendingScore = MinScoreFloor
	}

	if c.MinTrendingScore > MinScoreCeil {
		c.MinTrendingScore = MinScoreCeil
	}

	if c.RefreshInterval < RefreshIntervalMin {
		c.RefreshInterval = RefreshIntervalMin
	}

	if c.RefreshInterval > RefreshIntervalMax {
		c.RefreshInterval = RefreshIntervalMax
	}

	if c.TopN <= 0 {
		c.TopN = 20
	}

	if c.TitleMaxLen <= 0 {
		c.TitleMaxLen = 80
	}
}

// ArchiveEnabled reports whether the Postgres refresh archive is
// configured.
func (c *Config) ArchiveEnabled() bool {
	return c.PostgresDSN != ""
}
