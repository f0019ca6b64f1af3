// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/filmseer/config.yaml",
	"/etc/filmseer/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths lists config keys that accept comma-separated values
// from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"sampling.genres",
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/filmseer.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Model: ModelConfig{
			Path: "/data/models/svd.model",
		},
		Sampling: SamplingConfig{
			Strategy:   "popularity",
			SampleSize: 10,
			MinYear:    0, // 0 disables the year filter
			Seed:       42,
			Genres:     []string{"Action", "Animation", "Comedy", "Drama", "Sci-Fi"},
		},
		Pipeline: PipelineConfig{
			TopN:         3,
			MaxTopN:      10,
			TagsPerMovie: 3,
		},
		TMDB: TMDBConfig{
			APIKey:   "", // empty disables poster lookups
			BaseURL:  "https://api.themoviedb.org/3",
			ImageURL: "https://image.tmdb.org/t/p/w500",
			Language: "en-US",
			Timeout:  5 * time.Second,
			CacheTTL: 6 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load assembles configuration using Koanf v2 with layered sources:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// SERVER_PORT -> server.port, TMDB_API_KEY -> tmdb.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring CONFIG_PATH first.
// Returns empty string when no file exists (file layer is skipped).
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// processSliceFields converts comma-separated environment values into
// string slices for the keys in sliceConfigPaths. YAML-provided slices are
// left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// knownEnvPrefixes maps environment variable prefixes to config sections.
// Variables outside these prefixes are ignored so unrelated environment
// noise cannot leak into the configuration.
var knownEnvPrefixes = []string{
	"SERVER_",
	"DATABASE_",
	"MODEL_",
	"SAMPLING_",
	"PIPELINE_",
	"TMDB_",
	"LOG_",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - SERVER_PORT            -> server.port
//   - DATABASE_PATH          -> database.path
//   - SAMPLING_SAMPLE_SIZE   -> sampling.sample_size
//   - TMDB_API_KEY           -> tmdb.api_key
//   - LOG_LEVEL              -> logging.level
func envTransformFunc(key string) string {
	matched := ""
	for _, prefix := range knownEnvPrefixes {
		if strings.HasPrefix(key, prefix) {
			matched = prefix
			break
		}
	}
	if matched == "" {
		return "" // ignored
	}

	section := strings.ToLower(strings.TrimSuffix(matched, "_"))
	if section == "log" {
		section = "logging"
	}

	rest := strings.ToLower(strings.TrimPrefix(key, matched))
	if rest == "" {
		return ""
	}

	return section + "." + rest
}
