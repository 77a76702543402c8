// Package model evaluates fitted scalers and binary classifiers exported
// by the training pipeline as JSON documents.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Scaler is a fitted feature transform applied to every inference input.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// Classifier is a fitted binary decision model.
type Classifier interface {
	Predict(features []float64) (int, error)
	// PredictProba returns one probability per class, ordered as the
	// classifier's classes.
	PredictProba(features []float64) ([]float64, error)
}

const (
	KindStandardScaler = "standard_scaler"
	KindSVC            = "svc"
	KindRandomForest   = "random_forest"
)

var (
	ErrDimension     = errors.New("feature dimension mismatch")
	ErrNoProbability = errors.New("classifier has no probability estimator")
	ErrUnsupported   = errors.New("unsupported model kind")
)

type envelope struct {
	Kind string `json:"kind"`
}

// DecodeScaler parses a scaler document.
func DecodeScaler(payload []byte) (Scaler, error) {
	kind, err := peekKind(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindStandardScaler:
		if err := checkSchema(kind, payload); err != nil {
			return nil, err
		}
		s := &StandardScaler{}
		if err := json.Unmarshal(payload, s); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a scaler", ErrUnsupported, kind)
	}
}

// DecodeClassifier parses a classifier document.
func DecodeClassifier(payload []byte) (Classifier, error) {
	kind, err := peekKind(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSVC:
		if err := checkSchema(kind, payload); err != nil {
			return nil, err
		}
		m := &SVC{}
		if err := json.Unmarshal(payload, m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	case KindRandomForest:
		if err := checkSchema(kind, payload); err != nil {
			return nil, err
		}
		m := &RandomForest{}
		if err := json.Unmarshal(payload, m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q is not a classifier", ErrUnsupported, kind)
	}
}

func peekKind(payload []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("decode artifact envelope: %w", err)
	}
	if env.Kind == "" {
		return "", errors.New("artifact has no kind")
	}
	return env.Kind, nil
}

// validateClasses requires the binary labels in training order: callers
// read index 1 as the positive class.
func validateClasses(classes []int) error {
	if len(classes) != 2 {
		return fmt.Errorf("expected 2 classes, got %d", len(classes))
	}
	if classes[0] != 0 || classes[1] != 1 {
		return fmt.Errorf("classes must be [0 1], got %v", classes)
	}
	return nil
}
