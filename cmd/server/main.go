// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Filmseer serves personalized movie recommendations: users present an ID,
// pick a genre, rate a sampled set of movies, and receive SVD-scored
// recommendations enriched with genome tags and TMDB posters.
//
// Startup is fail-closed: the catalog and the model must load completely
// before the server binds, otherwise the process exits non-zero.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmseer/filmseer/internal/api"
	"github.com/filmseer/filmseer/internal/catalog"
	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/logging"
	"github.com/filmseer/filmseer/internal/pipeline"
	"github.com/filmseer/filmseer/internal/poster"
	"github.com/filmseer/filmseer/internal/sampling"
	"github.com/filmseer/filmseer/internal/svd"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("model_path", cfg.Model.Path).
		Str("strategy", cfg.Sampling.Strategy).
		Bool("posters_enabled", cfg.TMDB.APIKey != "").
		Msg("Starting Filmseer")

	// === CATALOG (fail closed) ===
	db, err := catalog.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog database")
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Minute)
	store, err := catalog.Load(loadCtx, db)
	cancelLoad()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	// The catalog lives in memory from here on; the connection is only
	// needed for the bulk load.
	if err := db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close catalog database")
	}

	// === MODEL (fail closed) ===
	model, modelMeta, err := svd.Load(cfg.Model.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load SVD model")
	}
	logging.Info().
		Int("users", modelMeta.UserCount).
		Int("items", modelMeta.ItemCount).
		Time("trained_at", modelMeta.TrainedAt).
		Msg("SVD model loaded")

	// === SERVICE WIRING ===
	sampler, err := sampling.New(&cfg.Sampling, store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build sampler")
	}

	posters := poster.New(&cfg.TMDB, store)
	engine := pipeline.New(store, model, posters, &cfg.Pipeline)
	handler := api.NewHandler(cfg, store, sampler, engine, posters, modelMeta)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.NewRouter(handler),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === SERVE ===
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
