// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package pipeline

import (
	"context"
	"errors"

	"github.com/filmseer/filmseer/internal/catalog"
	"github.com/filmseer/filmseer/internal/models"
)

// Result values reported by a pipeline run.
const (
	// ResultOK means recommendations were produced.
	ResultOK = "ok"

	// ResultNoCandidates means the user rated every catalog movie, leaving
	// nothing to score.
	ResultNoCandidates = "no_candidates"

	// ResultNothingToRecommend means candidates existed but none could be
	// scored.
	ResultNothingToRecommend = "nothing_to_recommend"
)

// Skip reasons attached to candidates the pipeline could not recommend.
const (
	SkipPredictionFailed = "prediction_failed"
	SkipMissingTitle     = "missing_title"
)

// ErrNoRatings is returned when a request carries no usable ratings after
// out-of-range values are dropped.
var ErrNoRatings = errors.New("no valid ratings submitted")

// Library is the catalog surface the pipeline reads. Satisfied by
// *catalog.Store.
type Library interface {
	Movies() []catalog.Movie
	TopTags(movieID, n int) []string
}

// Scorer predicts the rating a user would give a movie. Satisfied by
// *svd.Model.
type Scorer interface {
	Predict(userID, movieID int) (float64, error)
}

// PosterResolver resolves poster URLs best-effort. Satisfied by
// poster.Resolver.
type PosterResolver interface {
	Resolve(ctx context.Context, movieID int) (url string, ok bool)
}

// Request is one recommendation request.
type Request struct {
	// UserID identifies the user for the model lookup. Any numeric ID is
	// acceptable; IDs unseen in training degrade to partial estimates.
	UserID int

	// Ratings maps movie ID to the rating the user just submitted. Rated
	// movies are excluded from the candidate set.
	Ratings map[int]float64

	// K overrides the configured list length when positive. Values above
	// the configured maximum are capped.
	K int
}

// Skipped describes a candidate the pipeline dropped during scoring or
// enrichment.
type Skipped struct {
	MovieID int    `json:"movie_id"`
	Reason  string `json:"reason"`
}

// Response is the outcome of a pipeline run.
type Response struct {
	// Result is one of the Result* constants.
	Result string `json:"result"`

	// Items is the ranked recommendation list, empty unless Result is ok.
	Items []models.Recommendation `json:"items"`

	// Skipped lists candidates that could not be scored or enriched.
	Skipped []Skipped `json:"skipped,omitempty"`

	// DroppedRatings counts submitted ratings discarded as out of range.
	DroppedRatings int `json:"dropped_ratings,omitempty"`
}
