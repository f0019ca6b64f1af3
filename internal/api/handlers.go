// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/filmseer/filmseer/internal/catalog"
	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/logging"
	"github.com/filmseer/filmseer/internal/metrics"
	"github.com/filmseer/filmseer/internal/models"
	"github.com/filmseer/filmseer/internal/pipeline"
	"github.com/filmseer/filmseer/internal/poster"
	"github.com/filmseer/filmseer/internal/sampling"
	"github.com/filmseer/filmseer/internal/svd"
)

// CatalogStore is the catalog surface the handlers read. Satisfied by
// *catalog.Store.
type CatalogStore interface {
	ByGenre(genre string, minYear int) []catalog.Movie
	UserRatingCount(userID int) int
	Stats() catalog.Stats
}

// Recommender runs the recommendation pipeline. Satisfied by
// *pipeline.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Handler holds the request handlers and their collaborators.
type Handler struct {
	cfg       *config.Config
	store     CatalogStore
	sampler   sampling.Sampler
	engine    Recommender
	posters   poster.Resolver
	modelMeta *svd.ModelMetadata
	startedAt time.Time
}

// NewHandler builds the API handler set.
func NewHandler(
	cfg *config.Config,
	store CatalogStore,
	sampler sampling.Sampler,
	engine Recommender,
	posters poster.Resolver,
	modelMeta *svd.ModelMetadata,
) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		sampler:   sampler,
		engine:    engine,
		posters:   posters,
		modelMeta: modelMeta,
		startedAt: time.Now(),
	}
}

// healthData is the health endpoint payload. Startup is fail-closed, so a
// serving process is by definition ready; the payload surfaces what was
// loaded.
type healthData struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Catalog       catalog.Stats `json:"catalog"`
	Model         modelInfo     `json:"model"`
}

type modelInfo struct {
	Users     int       `json:"users"`
	Items     int       `json:"items"`
	TrainedAt time.Time `json:"trained_at"`
}

// Health reports service readiness along with catalog and model summaries.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondSuccess(w, http.StatusOK, healthData{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Catalog:       h.store.Stats(),
		Model: modelInfo{
			Users:     h.modelMeta.UserCount,
			Items:     h.modelMeta.ItemCount,
			TrainedAt: h.modelMeta.TrainedAt,
		},
	}, start)
}

// User handles the "present ID" step: the ID must be numeric, and the
// response carries the user's historical rating count. Unknown IDs are
// valid users with a count of zero.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "user ID must be numeric", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":      userID,
		"rating_count": h.store.UserRatingCount(userID),
	}, start)
}

// Genres returns the configured genre set the UI offers.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"genres": h.cfg.Sampling.Genres,
	}, start)
}

// GenreMovies runs the genre sampling stage: filter the catalog by genre
// (and optional minimum release year), sample up to the configured size,
// and attach posters best-effort.
func (h *Handler) GenreMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	genre := chi.URLParam(r, "genre")
	if !h.knownGenre(genre) {
		respondError(w, http.StatusBadRequest, "UNKNOWN_GENRE", "genre is not in the configured genre set", nil)
		return
	}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if _, err := strconv.Atoi(raw); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "user_id must be numeric", nil)
			return
		}
	}

	minYear := getIntParam(r, "min_year", h.cfg.Sampling.MinYear)
	if minYear < 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "min_year must not be negative", nil)
		return
	}

	candidates := h.store.ByGenre(genre, minYear)
	if len(candidates) == 0 {
		respondError(w, http.StatusNotFound, "NO_MOVIES_FOR_GENRE",
			"no catalog movies qualify for this genre", nil)
		return
	}

	sampled := h.sampler.Sample(candidates, h.cfg.Sampling.SampleSize)
	metrics.RecordSample(h.sampler.Name(), genre)

	// Posters in parallel, results written by sample index.
	movies := make([]models.SampledMovie, len(sampled))
	var wg sync.WaitGroup
	for i, m := range sampled {
		movies[i] = models.SampledMovie{MovieID: m.ID, Title: m.Title}

		wg.Add(1)
		go func(idx, movieID int) {
			defer wg.Done()
			if url, ok := h.posters.Resolve(r.Context(), movieID); ok {
				movies[idx].Poster = url
			}
		}(i, m.ID)
	}
	wg.Wait()

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"genre":    genre,
		"strategy": h.sampler.Name(),
		"movies":   movies,
		"count":    len(movies),
	}, start)
}

// recommendRequest is the POST /recommendations body.
type recommendRequest struct {
	UserID  int             `json:"user_id" validate:"min=1"`
	Ratings map[int]float64 `json:"ratings" validate:"required"`
	K       int             `json:"k" validate:"omitempty,min=1"`
}

// Recommend runs the full recommendation pipeline for a rating submission.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	resp, err := h.engine.Recommend(r.Context(), pipeline.Request{
		UserID:  req.UserID,
		Ratings: req.Ratings,
		K:       req.K,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrNoRatings) {
			respondError(w, http.StatusBadRequest, "NO_RATINGS",
				"at least one rating between 0.5 and 5.0 is required", nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Int("user_id", req.UserID).Msg("Recommendation pipeline failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to produce recommendations", err)
		return
	}

	respondSuccess(w, http.StatusOK, resp, start)
}

// knownGenre reports whether the genre is in the configured set. The match
// is case-sensitive, like the catalog's genre encoding.
func (h *Handler) knownGenre(genre string) bool {
	for _, g := range h.cfg.Sampling.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
