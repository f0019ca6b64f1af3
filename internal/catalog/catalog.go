// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// Movie is one row of the movies relation. Genres is the raw pipe-separated
// genre list as stored in the catalog (e.g. "Action|Sci-Fi|Thriller").
type Movie struct {
	ID     int
	Title  string
	Genres string
}

// TagScore is one genome tag attached to a movie, with its relevance score.
type TagScore struct {
	Tag       string
	Relevance float64
}

// Stats summarizes the loaded catalog for health reporting.
type Stats struct {
	Movies      int `json:"movies"`
	RatedMovies int `json:"rated_movies"`
	Users       int `json:"users"`
	Tags        int `json:"tags"`
	Links       int `json:"links"`
}

// Store holds the catalog tables in memory. It is immutable after Load and
// safe for concurrent use.
type Store struct {
	movies       []Movie // catalog order: movieId ascending
	titleByID    map[int]string
	ratingCounts map[int]int // movieId -> number of ratings
	userRatings  map[int]int // userId -> number of ratings
	tmdbIDs      map[int]int64
	tagsByMovie  map[int][]TagScore // sorted by relevance descending
	tagCount     int
}

// Movies returns all catalog movies in catalog order. The returned slice is
// shared; callers must not modify it.
func (s *Store) Movies() []Movie {
	return s.movies
}

// MovieCount returns the number of movies in the catalog.
func (s *Store) MovieCount() int {
	return len(s.movies)
}

// Title returns the title for a movie ID. The second return is false when
// the ID is not in the catalog.
func (s *Store) Title(movieID int) (string, bool) {
	t, ok := s.titleByID[movieID]
	return t, ok
}

// ByGenre returns movies whose genre list contains the given genre, in
// catalog order. The match is a case-sensitive substring match against the
// raw genre column, mirroring how the catalog encodes multi-genre rows.
// When minYear > 0, movies released before minYear are excluded; titles
// without a parseable year token are excluded from the filtered set.
func (s *Store) ByGenre(genre string, minYear int) []Movie {
	var out []Movie
	for _, m := range s.movies {
		if !strings.Contains(m.Genres, genre) {
			continue
		}
		if minYear > 0 {
			year, ok := ReleaseYear(m.Title)
			if !ok || year < minYear {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// RatingCount returns the number of ratings the catalog holds for a movie.
// Unrated movies return 0.
func (s *Store) RatingCount(movieID int) int {
	return s.ratingCounts[movieID]
}

// UserRatingCount returns the number of ratings a user has in the catalog.
// Unknown users return 0; any numeric ID is a valid user.
func (s *Store) UserRatingCount(userID int) int {
	return s.userRatings[userID]
}

// TMDBID returns the TMDB identifier linked to a movie. The second return
// is false when the movie has no link row or the link has no TMDB ID.
func (s *Store) TMDBID(movieID int) (int64, bool) {
	id, ok := s.tmdbIDs[movieID]
	return id, ok
}

// TopTags returns up to n genome tag names for a movie, ordered by relevance
// descending. Movies without genome rows return nil.
func (s *Store) TopTags(movieID, n int) []string {
	scores := s.tagsByMovie[movieID]
	if len(scores) == 0 || n <= 0 {
		return nil
	}
	if n > len(scores) {
		n = len(scores)
	}
	tags := make([]string, n)
	for i := 0; i < n; i++ {
		tags[i] = scores[i].Tag
	}
	return tags
}

// Stats returns summary counts for the loaded catalog.
func (s *Store) Stats() Stats {
	return Stats{
		Movies:      len(s.movies),
		RatedMovies: len(s.ratingCounts),
		Users:       len(s.userRatings),
		Tags:        s.tagCount,
		Links:       len(s.tmdbIDs),
	}
}

// yearPattern matches the parenthesized release year embedded in catalog
// titles, e.g. "Heat (1995)".
var yearPattern = regexp.MustCompile(`\((\d{4})\)`)

// ReleaseYear extracts the release year from a catalog title. The second
// return is false when the title carries no "(YYYY)" token.
func ReleaseYear(title string) (int, bool) {
	m := yearPattern.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
