// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

/*
Package catalog loads the MovieLens-style relational catalog from DuckDB into
immutable in-memory tables and serves lookups against them.

Five relations are loaded at startup: movies, ratings, genome_scores,
genome_tags, and links. The load is fail-closed: any query error aborts
startup rather than serving a partial catalog. After Load returns, the Store
is read-only and safe for concurrent use without locking.

Catalog order is movieId ascending; it is the tie-break order used by the
recommendation pipeline when scores are equal.
*/
package catalog
