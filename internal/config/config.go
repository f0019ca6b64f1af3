// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Package config provides layered configuration for Filmseer using Koanf v2.
//
// Configuration is assembled from three sources, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (SERVER_PORT, TMDB_API_KEY, ...)
//
// The loaded Config is validated before use; an invalid configuration is a
// startup failure, never a silently-degraded runtime.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the Filmseer server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Model    ModelConfig    `koanf:"model"`
	Sampling SamplingConfig `koanf:"sampling"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds the DuckDB catalog source settings.
// The database is opened read-only; Filmseer never writes to it.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// ModelConfig locates the pre-trained SVD model file.
type ModelConfig struct {
	Path string `koanf:"path"`
}

// SamplingConfig controls the genre sampling stage.
type SamplingConfig struct {
	// Strategy selects the candidate selection policy: "random" or
	// "popularity". The two deployment variants of the original service
	// used one each; both remain supported.
	Strategy string `koanf:"strategy"`

	// SampleSize caps the number of rateable candidates returned.
	SampleSize int `koanf:"sample_size"`

	// MinYear excludes movies released before this year when > 0.
	// Titles without a parseable "(YYYY)" token are excluded from the
	// year-filtered set.
	MinYear int `koanf:"min_year"`

	// Seed drives the deterministic random strategy.
	Seed int64 `koanf:"seed"`

	// Genres is the enumerated genre set offered to users.
	Genres []string `koanf:"genres"`
}

// PipelineConfig controls the recommendation pipeline.
type PipelineConfig struct {
	// TopN is the default number of recommendations returned.
	TopN int `koanf:"top_n"`

	// MaxTopN bounds the per-request override of TopN.
	MaxTopN int `koanf:"max_top_n"`

	// TagsPerMovie is the number of genome tags attached to each
	// recommendation.
	TagsPerMovie int `koanf:"tags_per_movie"`
}

// TMDBConfig holds poster lookup settings for The Movie Database API.
type TMDBConfig struct {
	APIKey   string        `koanf:"api_key"`
	BaseURL  string        `koanf:"base_url"`
	ImageURL string        `koanf:"image_url"`
	Language string        `koanf:"language"`
	Timeout  time.Duration `koanf:"timeout"`

	// CacheTTL is how long resolved poster URLs are cached in memory.
	// Zero disables the cache.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would make the service
// misbehave at runtime. It returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}

	switch c.Sampling.Strategy {
	case "random", "popularity":
	default:
		return fmt.Errorf("sampling.strategy must be \"random\" or \"popularity\", got %q", c.Sampling.Strategy)
	}
	if c.Sampling.SampleSize < 1 {
		return fmt.Errorf("sampling.sample_size must be at least 1, got %d", c.Sampling.SampleSize)
	}
	if c.Sampling.MinYear < 0 {
		return fmt.Errorf("sampling.min_year must not be negative, got %d", c.Sampling.MinYear)
	}
	if len(c.Sampling.Genres) == 0 {
		return fmt.Errorf("sampling.genres must not be empty")
	}
	for _, g := range c.Sampling.Genres {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("sampling.genres contains an empty entry")
		}
	}

	if c.Pipeline.TopN < 1 {
		return fmt.Errorf("pipeline.top_n must be at least 1, got %d", c.Pipeline.TopN)
	}
	if c.Pipeline.MaxTopN < c.Pipeline.TopN {
		return fmt.Errorf("pipeline.max_top_n (%d) must be >= pipeline.top_n (%d)",
			c.Pipeline.MaxTopN, c.Pipeline.TopN)
	}
	if c.Pipeline.TagsPerMovie < 0 {
		return fmt.Errorf("pipeline.tags_per_movie must not be negative, got %d", c.Pipeline.TagsPerMovie)
	}

	if c.TMDB.APIKey != "" {
		if c.TMDB.BaseURL == "" {
			return fmt.Errorf("tmdb.base_url is required when tmdb.api_key is set")
		}
		if c.TMDB.Timeout <= 0 {
			return fmt.Errorf("tmdb.timeout must be positive, got %s", c.TMDB.Timeout)
		}
		if c.TMDB.CacheTTL < 0 {
			return fmt.Errorf("tmdb.cache_ttl must not be negative, got %s", c.TMDB.CacheTTL)
		}
	}

	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
