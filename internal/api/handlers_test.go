// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/filmseer/filmseer/internal/catalog"
	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/models"
	"github.com/filmseer/filmseer/internal/pipeline"
	"github.com/filmseer/filmseer/internal/svd"
)

// fakeStore implements CatalogStore over fixed data.
type fakeStore struct {
	byGenre     map[string][]catalog.Movie
	userCounts  map[int]int
	lastMinYear int
}

func (f *fakeStore) ByGenre(genre string, minYear int) []catalog.Movie {
	f.lastMinYear = minYear
	return f.byGenre[genre]
}

func (f *fakeStore) UserRatingCount(userID int) int { return f.userCounts[userID] }

func (f *fakeStore) Stats() catalog.Stats {
	return catalog.Stats{Movies: 3, RatedMovies: 2, Users: 2, Tags: 5, Links: 2}
}

// fakeSampler returns the first n candidates.
type fakeSampler struct{}

func (fakeSampler) Sample(candidates []catalog.Movie, n int) []catalog.Movie {
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func (fakeSampler) Name() string { return "popularity" }

// fakeEngine returns a canned pipeline response.
type fakeEngine struct {
	resp    *pipeline.Response
	err     error
	lastReq pipeline.Request
}

func (f *fakeEngine) Recommend(ctx context.Context, req pipeline.Request) (*pipeline.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}

// fakeResolver serves posters from a map.
type fakeResolver map[int]string

func (f fakeResolver) Resolve(ctx context.Context, movieID int) (string, bool) {
	url, ok := f[movieID]
	return url, ok
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			Timeout:         30 * time.Second,
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Sampling: config.SamplingConfig{
			Strategy:   "popularity",
			SampleSize: 2,
			MinYear:    0,
			Seed:       42,
			Genres:     []string{"Action", "Animation", "Comedy", "Drama", "Sci-Fi"},
		},
		Pipeline: config.PipelineConfig{TopN: 3, MaxTopN: 10, TagsPerMovie: 3},
	}
}

func testServer(t *testing.T, store *fakeStore, engine *fakeEngine) *httptest.Server {
	t.Helper()

	h := NewHandler(
		testConfig(),
		store,
		fakeSampler{},
		engine,
		fakeResolver{1: "https://img/1.jpg"},
		&svd.ModelMetadata{UserCount: 100, ItemCount: 50, TrainedAt: time.Now()},
	)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func defaultStore() *fakeStore {
	return &fakeStore{
		byGenre: map[string][]catalog.Movie{
			"Action": {
				{ID: 1, Title: "Toy Story (1995)"},
				{ID: 6, Title: "Heat (1995)"},
				{ID: 32, Title: "Twelve Monkeys (1995)"},
			},
		},
		userCounts: map[int]int{7: 42},
	}
}

func get(t *testing.T, url string) (*http.Response, *models.APIResponse) {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec // test URL from httptest
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, &envelope
}

func post(t *testing.T, url, body string) (*http.Response, *models.APIResponse) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint:gosec // test URL
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, &envelope
}

func TestHealth(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q, want success", envelope.Status)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", envelope.Data)
	}
	if data["status"] != "ok" {
		t.Errorf("health status = %v, want ok", data["status"])
	}
}

func TestUserRatingCount(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/users/7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	if data["rating_count"].(float64) != 42 {
		t.Errorf("rating_count = %v, want 42", data["rating_count"])
	}
}

func TestUserUnknownIDIsZeroCount(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/users/9999")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown but numeric ID", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	if data["rating_count"].(float64) != 0 {
		t.Errorf("rating_count = %v, want 0", data["rating_count"])
	}
}

func TestUserNonNumericID(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/users/abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "INVALID_USER_ID" {
		t.Errorf("error = %+v, want INVALID_USER_ID", envelope.Error)
	}
}

func TestGenres(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/genres")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	genres := data["genres"].([]interface{})
	if len(genres) != 5 {
		t.Errorf("genres count = %d, want 5", len(genres))
	}
}

func TestGenreMovies(t *testing.T) {
	store := defaultStore()
	srv := testServer(t, store, &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/genres/Action/movies?user_id=7")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data := envelope.Data.(map[string]interface{})
	movies := data["movies"].([]interface{})
	if len(movies) != 2 {
		t.Fatalf("movies count = %d, want sample size 2", len(movies))
	}

	first := movies[0].(map[string]interface{})
	if first["movie_id"].(float64) != 1 {
		t.Errorf("movies[0].movie_id = %v, want 1", first["movie_id"])
	}
	if first["poster"] != "https://img/1.jpg" {
		t.Errorf("movies[0].poster = %v, want resolved URL", first["poster"])
	}

	second := movies[1].(map[string]interface{})
	if _, hasPoster := second["poster"]; hasPoster {
		t.Errorf("movies[1] has poster %v, want omitted on miss", second["poster"])
	}
}

func TestGenreMoviesUnknownGenre(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/genres/Horror/movies")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "UNKNOWN_GENRE" {
		t.Errorf("error = %+v, want UNKNOWN_GENRE", envelope.Error)
	}
}

func TestGenreMoviesEmptyResult(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	// Drama is configured but has no catalog movies in the fake store.
	resp, envelope := get(t, srv.URL+"/api/v1/genres/Drama/movies")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "NO_MOVIES_FOR_GENRE" {
		t.Errorf("error = %+v, want NO_MOVIES_FOR_GENRE", envelope.Error)
	}
}

func TestGenreMoviesBadUserID(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := get(t, srv.URL+"/api/v1/genres/Action/movies?user_id=abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "INVALID_USER_ID" {
		t.Errorf("error = %+v, want INVALID_USER_ID", envelope.Error)
	}
}

func TestGenreMoviesMinYearOverride(t *testing.T) {
	store := defaultStore()
	srv := testServer(t, store, &fakeEngine{})

	get(t, srv.URL+"/api/v1/genres/Action/movies?min_year=2000")
	if store.lastMinYear != 2000 {
		t.Errorf("min_year passed to catalog = %d, want 2000", store.lastMinYear)
	}
}

func TestRecommend(t *testing.T) {
	engine := &fakeEngine{resp: &pipeline.Response{
		Result: pipeline.ResultOK,
		Items: []models.Recommendation{
			{MovieID: 50, Title: "Usual Suspects, The (1995)", Score: 4.68, Tags: []string{"twist ending"}},
		},
	}}
	srv := testServer(t, defaultStore(), engine)

	resp, envelope := post(t, srv.URL+"/api/v1/recommendations",
		`{"user_id": 7, "ratings": {"1": 4.0, "6": 3.5}, "k": 5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q, want success", envelope.Status)
	}

	data := envelope.Data.(map[string]interface{})
	if data["result"] != "ok" {
		t.Errorf("result = %v, want ok", data["result"])
	}

	if engine.lastReq.UserID != 7 || engine.lastReq.K != 5 {
		t.Errorf("pipeline request = %+v, want user 7 k 5", engine.lastReq)
	}
	if engine.lastReq.Ratings[1] != 4.0 || engine.lastReq.Ratings[6] != 3.5 {
		t.Errorf("pipeline ratings = %v, want submitted ratings", engine.lastReq.Ratings)
	}
}

func TestRecommendInvalidJSON(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := post(t, srv.URL+"/api/v1/recommendations", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", envelope.Error)
	}
}

func TestRecommendMissingUserID(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, envelope := post(t, srv.URL+"/api/v1/recommendations", `{"ratings": {"1": 4.0}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", envelope.Error)
	}
}

func TestRecommendNoRatings(t *testing.T) {
	engine := &fakeEngine{err: pipeline.ErrNoRatings}
	srv := testServer(t, defaultStore(), engine)

	resp, envelope := post(t, srv.URL+"/api/v1/recommendations",
		`{"user_id": 7, "ratings": {"1": 99.0}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != "NO_RATINGS" {
		t.Errorf("error = %+v, want NO_RATINGS", envelope.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t, defaultStore(), &fakeEngine{})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
