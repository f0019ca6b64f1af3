// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package poster

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/logging"
	"github.com/filmseer/filmseer/internal/metrics"
)

// TMDBLinker maps catalog movie IDs to TMDB identifiers. Satisfied by
// *catalog.Store.
type TMDBLinker interface {
	TMDBID(movieID int) (int64, bool)
}

// Resolver resolves the poster URL for a catalog movie. Implementations
// never return an error; a failed or empty lookup reports ok=false.
type Resolver interface {
	Resolve(ctx context.Context, movieID int) (url string, ok bool)
}

// New builds the poster resolver for the configuration. Without an API key
// poster lookups are disabled and every Resolve call misses. With a
// positive cache TTL, resolved URLs are served from an in-memory cache.
func New(cfg *config.TMDBConfig, links TMDBLinker) Resolver {
	if cfg.APIKey == "" {
		logging.Info().Msg("TMDB API key not configured; poster lookups disabled")
		return disabledResolver{}
	}

	var resolver Resolver = newTMDBResolver(cfg, links)
	if cfg.CacheTTL > 0 {
		resolver = newCachedResolver(resolver, cfg.CacheTTL)
	}
	return resolver
}

// disabledResolver is used when no TMDB API key is configured.
type disabledResolver struct{}

func (disabledResolver) Resolve(ctx context.Context, movieID int) (string, bool) {
	metrics.RecordPosterLookup("disabled", 0)
	return "", false
}

// tmdbResolver resolves posters via the TMDB API behind a circuit breaker.
type tmdbResolver struct {
	client *tmdbClient
	links  TMDBLinker
	cb     *gobreaker.CircuitBreaker[string]
	name   string
}

// newTMDBResolver wires the TMDB client with circuit breaker protection.
// Breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func newTMDBResolver(cfg *config.TMDBConfig, links TMDBLinker) *tmdbResolver {
	cbName := "tmdb-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening TMDB circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &tmdbResolver{
		client: newTMDBClient(cfg),
		links:  links,
		cb:     cb,
		name:   cbName,
	}
}

// Resolve looks up the poster URL for a movie. Movies without a TMDB link,
// TMDB failures, and open-circuit rejections all report ok=false.
func (r *tmdbResolver) Resolve(ctx context.Context, movieID int) (string, bool) {
	tmdbID, ok := r.links.TMDBID(movieID)
	if !ok {
		metrics.RecordPosterLookup("miss", 0)
		return "", false
	}

	start := time.Now()
	posterURL, err := r.cb.Execute(func() (string, error) {
		return r.client.posterURL(ctx, tmdbID)
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordPosterLookup("rejected", elapsed)
			logging.Ctx(ctx).Debug().Int("movie_id", movieID).Msg("Poster lookup rejected by circuit breaker")
		} else {
			metrics.RecordPosterLookup("error", elapsed)
			logging.Ctx(ctx).Warn().Err(err).Int("movie_id", movieID).Msg("Poster lookup failed")
		}
		return "", false
	}

	if posterURL == "" {
		metrics.RecordPosterLookup("miss", elapsed)
		return "", false
	}

	metrics.RecordPosterLookup("hit", elapsed)
	return posterURL, true
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
