// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sort"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/filmseer/filmseer/internal/config"
	"github.com/filmseer/filmseer/internal/logging"
	"github.com/filmseer/filmseer/internal/metrics"
)

// Open opens the DuckDB catalog database read-only and verifies the
// connection with a bounded ping.
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	connStr := fmt.Sprintf("%s?access_mode=read_only&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return db, nil
}

// Load reads the five catalog relations into an immutable Store. Any query
// error aborts the load; a Store is never returned partially populated.
func Load(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{
		titleByID:    make(map[int]string),
		ratingCounts: make(map[int]int),
		userRatings:  make(map[int]int),
		tmdbIDs:      make(map[int]int64),
		tagsByMovie:  make(map[int][]TagScore),
	}

	if err := s.loadMovies(ctx, db); err != nil {
		return nil, err
	}
	if err := s.loadRatingCounts(ctx, db); err != nil {
		return nil, err
	}
	if err := s.loadGenome(ctx, db); err != nil {
		return nil, err
	}
	if err := s.loadLinks(ctx, db); err != nil {
		return nil, err
	}

	stats := s.Stats()
	logging.Info().
		Int("movies", stats.Movies).
		Int("rated_movies", stats.RatedMovies).
		Int("users", stats.Users).
		Int("tags", stats.Tags).
		Int("links", stats.Links).
		Msg("Catalog loaded")

	if stats.Movies == 0 {
		logging.Warn().Msg("Catalog movies table is empty; all genre queries will be empty")
	}
	if stats.Users == 0 {
		logging.Warn().Msg("Catalog ratings table is empty; popularity sampling falls back to catalog order")
	}

	return s, nil
}

func (s *Store) loadMovies(ctx context.Context, db *sql.DB) error {
	start := time.Now()

	rows, err := db.QueryContext(ctx,
		`SELECT movieId, title, genres FROM movies ORDER BY movieId`)
	if err != nil {
		metrics.RecordCatalogLoad("movies", 0, time.Since(start), err)
		return fmt.Errorf("failed to query movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Genres); err != nil {
			metrics.RecordCatalogLoad("movies", 0, time.Since(start), err)
			return fmt.Errorf("failed to scan movie row: %w", err)
		}
		s.movies = append(s.movies, m)
		s.titleByID[m.ID] = m.Title
	}
	if err := rows.Err(); err != nil {
		metrics.RecordCatalogLoad("movies", 0, time.Since(start), err)
		return fmt.Errorf("movies row iteration failed: %w", err)
	}

	metrics.RecordCatalogLoad("movies", len(s.movies), time.Since(start), nil)
	return nil
}

// loadRatingCounts aggregates the ratings relation into per-movie and
// per-user counts. Individual rating rows are not retained; only the model
// needs them and it is trained offline.
func (s *Store) loadRatingCounts(ctx context.Context, db *sql.DB) error {
	start := time.Now()

	rows, err := db.QueryContext(ctx,
		`SELECT movieId, COUNT(*) FROM ratings GROUP BY movieId`)
	if err != nil {
		metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
		return fmt.Errorf("failed to query rating counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := 0
	for rows.Next() {
		var movieID, count int
		if err := rows.Scan(&movieID, &count); err != nil {
			metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
			return fmt.Errorf("failed to scan rating count row: %w", err)
		}
		s.ratingCounts[movieID] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
		return fmt.Errorf("rating count iteration failed: %w", err)
	}

	userRows, err := db.QueryContext(ctx,
		`SELECT userId, COUNT(*) FROM ratings GROUP BY userId`)
	if err != nil {
		metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
		return fmt.Errorf("failed to query user rating counts: %w", err)
	}
	defer func() { _ = userRows.Close() }()

	for userRows.Next() {
		var userID, count int
		if err := userRows.Scan(&userID, &count); err != nil {
			metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
			return fmt.Errorf("failed to scan user rating count row: %w", err)
		}
		s.userRatings[userID] = count
	}
	if err := userRows.Err(); err != nil {
		metrics.RecordCatalogLoad("ratings", 0, time.Since(start), err)
		return fmt.Errorf("user rating count iteration failed: %w", err)
	}

	metrics.RecordCatalogLoad("ratings", total, time.Since(start), nil)
	return nil
}

// loadGenome reads genome_tags and genome_scores and joins them in memory.
// Scores referencing a tag ID absent from genome_tags are dropped (inner
// join semantics). Per-movie tag lists are pre-sorted by relevance
// descending so TopTags is a slice prefix.
func (s *Store) loadGenome(ctx context.Context, db *sql.DB) error {
	start := time.Now()

	tagNames := make(map[int]string)
	tagRows, err := db.QueryContext(ctx, `SELECT tagId, tag FROM genome_tags`)
	if err != nil {
		metrics.RecordCatalogLoad("genome_tags", 0, time.Since(start), err)
		return fmt.Errorf("failed to query genome tags: %w", err)
	}
	defer func() { _ = tagRows.Close() }()

	for tagRows.Next() {
		var tagID int
		var tag string
		if err := tagRows.Scan(&tagID, &tag); err != nil {
			metrics.RecordCatalogLoad("genome_tags", 0, time.Since(start), err)
			return fmt.Errorf("failed to scan genome tag row: %w", err)
		}
		tagNames[tagID] = tag
	}
	if err := tagRows.Err(); err != nil {
		metrics.RecordCatalogLoad("genome_tags", 0, time.Since(start), err)
		return fmt.Errorf("genome tag iteration failed: %w", err)
	}
	s.tagCount = len(tagNames)
	metrics.RecordCatalogLoad("genome_tags", s.tagCount, time.Since(start), nil)

	scoreStart := time.Now()
	scoreRows, err := db.QueryContext(ctx,
		`SELECT movieId, tagId, relevance FROM genome_scores`)
	if err != nil {
		metrics.RecordCatalogLoad("genome_scores", 0, time.Since(scoreStart), err)
		return fmt.Errorf("failed to query genome scores: %w", err)
	}
	defer func() { _ = scoreRows.Close() }()

	scored := 0
	for scoreRows.Next() {
		var movieID, tagID int
		var relevance float64
		if err := scoreRows.Scan(&movieID, &tagID, &relevance); err != nil {
			metrics.RecordCatalogLoad("genome_scores", 0, time.Since(scoreStart), err)
			return fmt.Errorf("failed to scan genome score row: %w", err)
		}
		tag, ok := tagNames[tagID]
		if !ok {
			continue
		}
		s.tagsByMovie[movieID] = append(s.tagsByMovie[movieID], TagScore{Tag: tag, Relevance: relevance})
		scored++
	}
	if err := scoreRows.Err(); err != nil {
		metrics.RecordCatalogLoad("genome_scores", 0, time.Since(scoreStart), err)
		return fmt.Errorf("genome score iteration failed: %w", err)
	}

	for movieID := range s.tagsByMovie {
		scores := s.tagsByMovie[movieID]
		sort.SliceStable(scores, func(i, j int) bool {
			return scores[i].Relevance > scores[j].Relevance
		})
	}

	metrics.RecordCatalogLoad("genome_scores", scored, time.Since(scoreStart), nil)
	return nil
}

func (s *Store) loadLinks(ctx context.Context, db *sql.DB) error {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `SELECT movieId, tmdbId FROM links`)
	if err != nil {
		metrics.RecordCatalogLoad("links", 0, time.Since(start), err)
		return fmt.Errorf("failed to query links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var movieID int
		var tmdbID sql.NullInt64
		if err := rows.Scan(&movieID, &tmdbID); err != nil {
			metrics.RecordCatalogLoad("links", 0, time.Since(start), err)
			return fmt.Errorf("failed to scan link row: %w", err)
		}
		// Rows with a NULL tmdbId have no poster source; skip them.
		if tmdbID.Valid {
			s.tmdbIDs[movieID] = tmdbID.Int64
		}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordCatalogLoad("links", 0, time.Since(start), err)
		return fmt.Errorf("link iteration failed: %w", err)
	}

	metrics.RecordCatalogLoad("links", len(s.tmdbIDs), time.Since(start), nil)
	return nil
}
