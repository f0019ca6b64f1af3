// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package pipeline

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/logging"
	"github.com/filmseer/filmseer/internal/metrics"
	"github.com/filmseer/filmseer/internal/models"
	"github.com/filmseer/filmseer/internal/validation"
)

// Engine runs the recommendation pipeline against an in-memory catalog and
// a pre-trained model. It is stateless between requests and safe for
// concurrent use.
type Engine struct {
	library Library
	scorer  Scorer
	posters PosterResolver

	topN         int
	maxTopN      int
	tagsPerMovie int
}

// New builds an Engine from its collaborators and pipeline configuration.
func New(library Library, scorer Scorer, posters PosterResolver, cfg *config.PipelineConfig) *Engine {
	return &Engine{
		library:      library,
		scorer:       scorer,
		posters:      posters,
		topN:         cfg.TopN,
		maxTopN:      cfg.MaxTopN,
		tagsPerMovie: cfg.TagsPerMovie,
	}
}

// scoredCandidate pairs a catalog position with its estimate. The index
// into the catalog keeps the tie-break stable.
type scoredCandidate struct {
	movieID int
	title   string
	score   float64
}

// Recommend runs the full pipeline for one request.
//
// It returns ErrNoRatings when no usable ratings remain after range
// filtering. Every other degraded case is reported through Response.Result
// rather than an error: an exhausted catalog yields ResultNoCandidates, and
// a candidate set the model cannot score at all yields
// ResultNothingToRecommend.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	rated, dropped := filterRatings(req.Ratings)
	if dropped > 0 {
		metrics.RatingsDropped.Add(float64(dropped))
		logging.Ctx(ctx).Debug().
			Int("user_id", req.UserID).
			Int("dropped", dropped).
			Msg("Dropped out-of-range ratings")
	}
	if len(rated) == 0 {
		return nil, ErrNoRatings
	}

	k := e.listLength(req.K)

	resp := &Response{DroppedRatings: dropped}

	// Stage 2: candidates are every catalog movie not just rated, walked
	// in catalog order.
	// Stage 3: sequential scoring; per-candidate failures are absorbed.
	var scored []scoredCandidate
	for _, m := range e.library.Movies() {
		if _, wasRated := rated[m.ID]; wasRated {
			continue
		}
		if m.Title == "" {
			resp.Skipped = append(resp.Skipped, Skipped{MovieID: m.ID, Reason: SkipMissingTitle})
			metrics.PredictionsSkipped.WithLabelValues(SkipMissingTitle).Inc()
			continue
		}

		est, err := e.scorer.Predict(req.UserID, m.ID)
		if err != nil {
			resp.Skipped = append(resp.Skipped, Skipped{MovieID: m.ID, Reason: SkipPredictionFailed})
			metrics.PredictionsSkipped.WithLabelValues(SkipPredictionFailed).Inc()
			continue
		}
		metrics.PredictionsScored.Inc()
		scored = append(scored, scoredCandidate{movieID: m.ID, title: m.Title, score: est})
	}

	if len(resp.Skipped) > 0 {
		logging.Ctx(ctx).Warn().
			Int("user_id", req.UserID).
			Int("skipped", len(resp.Skipped)).
			Msg("Candidates skipped during scoring")
	}

	if len(scored) == 0 {
		if len(resp.Skipped) == 0 {
			resp.Result = ResultNoCandidates
		} else {
			resp.Result = ResultNothingToRecommend
		}
		resp.Items = []models.Recommendation{}
		metrics.RecordPipelineRun(resp.Result, time.Since(start))
		return resp, nil
	}

	// Stage 4: rank by estimate descending. The stable sort keeps catalog
	// order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if k > len(scored) {
		k = len(scored)
	}
	top := scored[:k]

	// Stage 5: enrichment. Tags come from the in-memory genome; posters
	// are fetched concurrently with results written by rank index so the
	// order survives.
	items := make([]models.Recommendation, len(top))
	var wg sync.WaitGroup
	for i, c := range top {
		items[i] = models.Recommendation{
			MovieID: c.movieID,
			Title:   c.title,
			Score:   roundScore(c.score),
			Tags:    e.library.TopTags(c.movieID, e.tagsPerMovie),
		}

		wg.Add(1)
		go func(rank, movieID int) {
			defer wg.Done()
			if url, ok := e.posters.Resolve(ctx, movieID); ok {
				items[rank].Poster = url
			}
		}(i, c.movieID)
	}
	wg.Wait()

	resp.Result = ResultOK
	resp.Items = items
	metrics.RecordPipelineRun(ResultOK, time.Since(start))

	logging.Ctx(ctx).Info().
		Int("user_id", req.UserID).
		Int("rated", len(rated)).
		Int("recommended", len(items)).
		Int("skipped", len(resp.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations produced")

	return resp, nil
}

// filterRatings drops values outside the rating scale and returns the
// usable set plus the drop count.
func filterRatings(ratings map[int]float64) (map[int]float64, int) {
	valid := make(map[int]float64, len(ratings))
	dropped := 0
	for movieID, value := range ratings {
		if !validation.ValidRating(value) {
			dropped++
			continue
		}
		valid[movieID] = value
	}
	return valid, dropped
}

// listLength resolves the requested list length against the configured
// default and cap.
func (e *Engine) listLength(requested int) int {
	if requested <= 0 {
		return e.topN
	}
	if requested > e.maxTopN {
		return e.maxTopN
	}
	return requested
}

// roundScore rounds an estimate to two decimals for presentation.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
