// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides a consistent structure for both successful and
// error responses, with metadata for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "count": 3},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z", "query_time_ms": 12}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NO_RATINGS", "message": "at least one rating is required"},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability. QueryTimeMS is the
// server-side processing time in milliseconds and is omitted when zero.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries structured error details for failed requests.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - INVALID_USER_ID: user ID missing or non-numeric
//   - UNKNOWN_GENRE: genre not in the configured genre set
//   - NO_MOVIES_FOR_GENRE: no catalog movies qualify for the genre filter
//   - NO_RATINGS: rating submission contained no valid (movie, value) pairs
//   - NOT_READY: catalog or model failed to initialize
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SampledMovie is a rateable candidate returned by the genre sampling
// endpoint. Poster is omitted when the lookup failed or no link exists.
type SampledMovie struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	Poster  string `json:"poster,omitempty"`
}

// Recommendation is one enriched entry in the recommendation response.
// Score is the SVD estimate rounded to two decimals. Tags holds up to three
// genome tags ordered by relevance and is empty when the movie has no
// genome rows.
type Recommendation struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Score   float64  `json:"score"`
	Tags    []string `json:"tags"`
	Poster  string   `json:"poster,omitempty"`
}
