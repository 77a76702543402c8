package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Skufu/GoRocky/internal/features"
)

// StandardScaler subtracts the training mean and divides by the training
// scale, per feature. Inputs outside the training range extrapolate.
type StandardScaler struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// Transform returns a new scaled vector; the input is not modified.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler expects %d, got %d", ErrDimension, len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("scaler has no mean")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale))
	}
	if len(s.Mean) != features.Count {
		return fmt.Errorf("%w: scaler fitted on %d features, want %d", ErrDimension, len(s.Mean), features.Count)
	}
	if len(s.FeatureNames) > 0 && !slices.Equal(s.FeatureNames, features.Names()) {
		return fmt.Errorf("scaler feature order %v does not match %v", s.FeatureNames, features.Names())
	}
	return nil
}
