// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package poster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/filmseer/filmseer/internal/config"
)

// movieDetails is the subset of the TMDB movie response we read.
type movieDetails struct {
	PosterPath string `json:"poster_path"`
}

// tmdbClient performs raw TMDB API calls.
type tmdbClient struct {
	httpClient *http.Client
	baseURL    string
	imageURL   string
	apiKey     string
	language   string
}

func newTMDBClient(cfg *config.TMDBConfig) *tmdbClient {
	return &tmdbClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		imageURL:   cfg.ImageURL,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
	}
}

// posterURL fetches movie details from TMDB and returns the full poster
// image URL. An empty string with nil error means TMDB knows the movie but
// has no poster for it, or does not know the movie at all.
func (c *tmdbClient) posterURL(ctx context.Context, tmdbID int64) (string, error) {
	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s&language=%s",
		c.baseURL, tmdbID, url.QueryEscape(c.apiKey), url.QueryEscape(c.language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("tmdb request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// An unknown TMDB ID is a miss, not a service failure.
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}

	var details movieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return "", fmt.Errorf("decode tmdb response: %w", err)
	}

	if details.PosterPath == "" {
		return "", nil
	}
	return c.imageURL + details.PosterPath, nil
}
