// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

/*
Package pipeline turns a user's submitted ratings into a ranked, enriched
recommendation list.

The pipeline runs in fixed stages:

 1. Drop submitted ratings outside the 0.5-5.0 scale.
 2. Build the candidate set: every catalog movie the user did not just rate.
 3. Score each candidate with the SVD model, in catalog order. Candidates
    the model cannot score are skipped and reported, never fatal.
 4. Stable-sort by score descending; equal scores keep catalog order.
 5. Keep the top K and enrich them with genome tags and poster URLs.

Poster lookups for the final list run concurrently but the ranked order is
preserved. Scoring itself is sequential; with one in-memory model per
process the dot products are far cheaper than goroutine coordination, and
sequential order keeps the tie-break deterministic.
*/
package pipeline
