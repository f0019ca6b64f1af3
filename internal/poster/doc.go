// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

/*
Package poster resolves movie poster URLs from The Movie Database (TMDB).

Poster lookup is strictly best-effort: Resolve never returns an error, only
a URL and an ok flag. Responses are served without posters rather than
failing when TMDB is slow, unreachable, or has no artwork for a movie.

Outbound calls are bounded by a per-request timeout and protected by a
circuit breaker so a degraded TMDB cannot stall recommendation responses.
When no API key is configured the resolver is a no-op that always misses.
*/
package poster
