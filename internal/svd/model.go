// Filmseer - Movie Recommendation Service
// Copyright 2026 Filmseer Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmseer/filmseer

// Package svd provides the pre-trained matrix factorization model used to
// score candidate movies. The model is trained offline; this package only
// loads it and serves predictions.
//
// A prediction is the clamped sum of the global mean, the user and item
// biases, and the dot product of the latent factor vectors. Unknown users or
// items degrade gracefully to partial estimates; only a (user, item) pair
// where both sides are unknown is unpredictable.
package svd

import (
	"errors"
	"fmt"
)

// Rating scale bounds applied to every estimate.
const (
	scaleMin = 0.5
	scaleMax = 5.0
)

// ErrPredictionImpossible is returned when neither the user nor the item is
// known to the model, leaving no signal to estimate from.
var ErrPredictionImpossible = errors.New("prediction impossible: unknown user and item")

// Model is the serializable state of a trained SVD model.
type Model struct {
	// GlobalMean is the mean rating across the training set.
	GlobalMean float64

	// Factors is the latent factor dimensionality.
	Factors int

	// UserBias and ItemBias hold the learned bias terms.
	UserBias map[int]float64
	ItemBias map[int]float64

	// UserFactors and ItemFactors hold the latent vectors, each of length
	// Factors.
	UserFactors map[int][]float64
	ItemFactors map[int][]float64
}

// Validate checks structural integrity after loading. Factor vectors must
// all have the declared dimensionality.
func (m *Model) Validate() error {
	if m.Factors <= 0 {
		return fmt.Errorf("model factors must be positive, got %d", m.Factors)
	}
	for userID, f := range m.UserFactors {
		if len(f) != m.Factors {
			return fmt.Errorf("user %d factor vector has length %d, want %d", userID, len(f), m.Factors)
		}
	}
	for itemID, f := range m.ItemFactors {
		if len(f) != m.Factors {
			return fmt.Errorf("item %d factor vector has length %d, want %d", itemID, len(f), m.Factors)
		}
	}
	return nil
}

// Users returns the number of users the model was trained on.
func (m *Model) Users() int {
	return len(m.UserFactors)
}

// Items returns the number of items the model was trained on.
func (m *Model) Items() int {
	return len(m.ItemFactors)
}

// Predict estimates the rating the user would give the movie, clamped to
// the 0.5-5.0 rating scale.
//
// When one side of the pair is unknown its bias and factor contributions
// drop out and the estimate is built from the remaining terms. When both
// sides are unknown ErrPredictionImpossible is returned.
func (m *Model) Predict(userID, movieID int) (float64, error) {
	userFactors, knownUser := m.UserFactors[userID]
	itemFactors, knownItem := m.ItemFactors[movieID]

	if !knownUser && !knownItem {
		return 0, ErrPredictionImpossible
	}

	est := m.GlobalMean
	if knownUser {
		est += m.UserBias[userID]
	}
	if knownItem {
		est += m.ItemBias[movieID]
	}
	if knownUser && knownItem {
		for i := 0; i < m.Factors; i++ {
			est += userFactors[i] * itemFactors[i]
		}
	}

	return clamp(est), nil
}

func clamp(v float64) float64 {
	if v < scaleMin {
		return scaleMin
	}
	if v > scaleMax {
		return scaleMax
	}
	return v
}
