// Package config loads the single knob struct every pipeline stage reads
// from. Values come from a TOML file (github.com/pelletier/go-toml/v2),
// layered under built-in defaults, the way cmd/sift/main.go layers
// .sift.toml under its own flag defaults.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the single struct §6.4 describes. Durations are stored as
// milliseconds/hours in the TOML file (easier to hand-edit) and exposed
// as time.Duration via the accessor methods below.
type Config struct {
	MinWordConfidence    float64 `toml:"min_word_confidence"`
	MinCaptureIntervalMs int64   `toml:"min_capture_interval_ms"`
	RetentionDays        int     `toml:"retention_days"`
	CleanupIntervalHours int     `toml:"cleanup_interval_hours"`
	MaxElements          int     `toml:"max_elements"`
	StaleCacheMs         int64   `toml:"stale_cache_ms"`
	EmbeddingDim         int     `toml:"embedding_dim"` // 0 => inferred from first embed call
	OcrTimeoutMs         int64   `toml:"ocr_timeout_ms"`
	EmbedTimeoutMs       int64   `toml:"embed_timeout_ms"`
	IndexTimeoutMs       int64   `toml:"index_timeout_ms"`
	CanonicalScreenW     int     `toml:"canonical_screen_w"`
	CanonicalScreenH     int     `toml:"canonical_screen_h"`
	MaxAnalyzedWindows   int     `toml:"max_analyzed_windows"`

	StoreDSN string `toml:"store_dsn"`
}

// Default returns the defaults named in §6.4.
func Default() Config {
	return Config{
		MinWordConfidence:    0.50,
		MinCaptureIntervalMs: 1000,
		RetentionDays:        3,
		CleanupIntervalHours: 2,
		MaxElements:          1_000_000,
		StaleCacheMs:         60_000,
		EmbeddingDim:         0,
		OcrTimeoutMs:         5000,
		EmbedTimeoutMs:       2000,
		IndexTimeoutMs:       1000,
		CanonicalScreenW:     2880,
		CanonicalScreenH:     1800,
		MaxAnalyzedWindows:   5,
		StoreDSN:             "screenintel.db",
	}
}

// Load reads a TOML file at path over the defaults. A missing file is not
// an error; it simply yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) MinCaptureInterval() time.Duration {
	return time.Duration(c.MinCaptureIntervalMs) * time.Millisecond
}

func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}

func (c Config) StaleCache() time.Duration {
	return time.Duration(c.StaleCacheMs) * time.Millisecond
}

func (c Config) OcrTimeout() time.Duration {
	return time.Duration(c.OcrTimeoutMs) * time.Millisecond
}

func (c Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutMs) * time.Millisecond
}

func (c Config) IndexTimeout() time.Duration {
	return time.Duration(c.IndexTimeoutMs) * time.Millisecond
}

func (c Config) CanonicalScreen() (w, h int) {
	return c.CanonicalScreenW, c.CanonicalScreenH
}

func (c Config) RetentionCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.RetentionDays)
}
