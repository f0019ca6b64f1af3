// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig() failed validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Server.Timeout = -1 },
			wantErr: "server.timeout",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "missing model path",
			mutate:  func(c *Config) { c.Model.Path = "" },
			wantErr: "model.path",
		},
		{
			name:    "unknown sampling strategy",
			mutate:  func(c *Config) { c.Sampling.Strategy = "alphabetical" },
			wantErr: "sampling.strategy",
		},
		{
			name:   "random strategy accepted",
			mutate: func(c *Config) { c.Sampling.Strategy = "random" },
		},
		{
			name:    "zero sample size",
			mutate:  func(c *Config) { c.Sampling.SampleSize = 0 },
			wantErr: "sampling.sample_size",
		},
		{
			name:    "negative min year",
			mutate:  func(c *Config) { c.Sampling.MinYear = -5 },
			wantErr: "sampling.min_year",
		},
		{
			name:    "empty genre set",
			mutate:  func(c *Config) { c.Sampling.Genres = nil },
			wantErr: "sampling.genres",
		},
		{
			name:    "blank genre entry",
			mutate:  func(c *Config) { c.Sampling.Genres = []string{"Action", "  "} },
			wantErr: "sampling.genres",
		},
		{
			name:    "zero top n",
			mutate:  func(c *Config) { c.Pipeline.TopN = 0 },
			wantErr: "pipeline.top_n",
		},
		{
			name: "max top n below top n",
			mutate: func(c *Config) {
				c.Pipeline.TopN = 5
				c.Pipeline.MaxTopN = 3
			},
			wantErr: "pipeline.max_top_n",
		},
		{
			name: "tmdb key without base url",
			mutate: func(c *Config) {
				c.TMDB.APIKey = "key"
				c.TMDB.BaseURL = ""
			},
			wantErr: "tmdb.base_url",
		},
		{
			name: "tmdb key without timeout",
			mutate: func(c *Config) {
				c.TMDB.APIKey = "key"
				c.TMDB.Timeout = 0
			},
			wantErr: "tmdb.timeout",
		},
		{
			name: "tmdb negative cache ttl",
			mutate: func(c *Config) {
				c.TMDB.APIKey = "key"
				c.TMDB.CacheTTL = -time.Hour
			},
			wantErr: "tmdb.cache_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"SERVER_RATE_LIMIT_REQS", "server.rate_limit_reqs"},
		{"DATABASE_PATH", "database.path"},
		{"MODEL_PATH", "model.path"},
		{"SAMPLING_SAMPLE_SIZE", "sampling.sample_size"},
		{"SAMPLING_STRATEGY", "sampling.strategy"},
		{"PIPELINE_TOP_N", "pipeline.top_n"},
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},
		{"HOME", ""},
		{"PATH", ""},
		{"SERVER_", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("SAMPLING_STRATEGY", "random")
	t.Setenv("SAMPLING_GENRES", "Action, Horror,Comedy")
	t.Setenv(ConfigPathEnvVar, "/nonexistent/config.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Sampling.Strategy != "random" {
		t.Errorf("Sampling.Strategy = %q, want random", cfg.Sampling.Strategy)
	}

	want := []string{"Action", "Horror", "Comedy"}
	if len(cfg.Sampling.Genres) != len(want) {
		t.Fatalf("Sampling.Genres = %v, want %v", cfg.Sampling.Genres, want)
	}
	for i, g := range want {
		if cfg.Sampling.Genres[i] != g {
			t.Errorf("Sampling.Genres[%d] = %q, want %q", i, cfg.Sampling.Genres[i], g)
		}
	}
}

func TestListenAddr(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8081

	if got := cfg.ListenAddr(); got != "127.0.0.1:8081" {
		t.Errorf("ListenAddr() = %q, want 127.0.0.1:8081", got)
	}
}
