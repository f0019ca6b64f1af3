// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Package models defines the shared API data structures used by the HTTP
// layer: the standard response envelope, error payloads, and the wire
// representations of sampled movies and recommendations.
//
// Domain types (catalog rows, predictions, pipeline outcomes) live in their
// owning packages; models holds only what crosses the HTTP boundary.
package models
