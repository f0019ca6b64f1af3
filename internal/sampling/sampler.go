// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Package sampling selects the rateable candidates shown to a user after
// they pick a genre. Two strategies are supported: a seeded random sample
// and a popularity ranking by catalog rating count. Both are deterministic
// for a given candidate list, so repeated requests for the same genre show
// the same movies.
package sampling

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/filmseer/filmseer/internal/catalog"
	"github.com/filmseer/filmseer/internal/config"
)

// Strategy names accepted in configuration.
const (
	StrategyRandom     = "random"
	StrategyPopularity = "popularity"
)

// RatingCounter reports how many catalog ratings a movie has. Satisfied by
// *catalog.Store.
type RatingCounter interface {
	RatingCount(movieID int) int
}

// Sampler selects up to n movies from a genre-filtered candidate list.
type Sampler interface {
	// Sample returns at most n movies from candidates. When candidates
	// holds fewer than n movies, all of them are returned. Candidates are
	// expected in catalog order; it is the tie-break order for the
	// popularity strategy.
	Sample(candidates []catalog.Movie, n int) []catalog.Movie

	// Name returns the strategy name for logging and metrics.
	Name() string
}

// New builds the Sampler selected by the configuration.
func New(cfg *config.SamplingConfig, counts RatingCounter) (Sampler, error) {
	switch cfg.Strategy {
	case StrategyRandom:
		return &randomSampler{seed: cfg.Seed}, nil
	case StrategyPopularity:
		return &popularitySampler{counts: counts}, nil
	default:
		return nil, fmt.Errorf("unknown sampling strategy %q", cfg.Strategy)
	}
}

// randomSampler draws a seeded pseudo-random sample. The source is re-seeded
// on every call so identical candidate lists always yield identical samples.
type randomSampler struct {
	seed int64
}

func (s *randomSampler) Name() string { return StrategyRandom }

func (s *randomSampler) Sample(candidates []catalog.Movie, n int) []catalog.Movie {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}
	if len(candidates) <= n {
		out := make([]catalog.Movie, len(candidates))
		copy(out, candidates)
		return out
	}

	r := rand.New(rand.NewSource(s.seed))
	perm := r.Perm(len(candidates))

	out := make([]catalog.Movie, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[perm[i]]
	}
	return out
}

// popularitySampler ranks candidates by catalog rating count, most rated
// first. Ties, including an entirely unrated candidate list, keep catalog
// order.
type popularitySampler struct {
	counts RatingCounter
}

func (s *popularitySampler) Name() string { return StrategyPopularity }

func (s *popularitySampler) Sample(candidates []catalog.Movie, n int) []catalog.Movie {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}

	ranked := make([]catalog.Movie, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.counts.RatingCount(ranked[i].ID) > s.counts.RatingCount(ranked[j].ID)
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
