// Package artifact loads the fitted scaler and classifiers once per
// process and hands them out as an immutable Bundle.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Skufu/GoRocky/internal/model"
)

// ErrArtifactNotFound means an artifact was absent, unreadable, or did
// not decode. Prediction cannot proceed without all three.
var ErrArtifactNotFound = errors.New("artifact not found")

// Error names the artifact that failed to load.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrArtifactNotFound
}

// Names are the well-known artifact locations within a Source.
type Names struct {
	Scaler       string
	SVM          string
	RandomForest string
}

// DefaultNames returns the names the training pipeline exports to.
func DefaultNames() Names {
	return Names{
		Scaler:       "scaler.json",
		SVM:          "model_svm.json",
		RandomForest: "model_rf.json",
	}
}

func (n Names) all() []string {
	return []string{n.Scaler, n.SVM, n.RandomForest}
}

// Bundle is the loaded artifact set. It is never mutated after Load.
type Bundle struct {
	Scaler       model.Scaler
	SVM          model.Classifier
	RandomForest model.Classifier
}

// Load reads and decodes all three artifacts from src.
func Load(ctx context.Context, src Source, names Names) (*Bundle, error) {
	scaler, err := loadScaler(ctx, src, names.Scaler)
	if err != nil {
		return nil, err
	}
	svm, err := loadClassifier(ctx, src, names.SVM)
	if err != nil {
		return nil, err
	}
	rf, err := loadClassifier(ctx, src, names.RandomForest)
	if err != nil {
		return nil, err
	}
	return &Bundle{Scaler: scaler, SVM: svm, RandomForest: rf}, nil
}

func loadScaler(ctx context.Context, src Source, name string) (model.Scaler, error) {
	payload, err := src.Open(ctx, name)
	if err != nil {
		return nil, &Error{Name: name, Err: err}
	}
	s, err := model.DecodeScaler(payload)
	if err != nil {
		return nil, &Error{Name: name, Err: err}
	}
	return s, nil
}

func loadClassifier(ctx context.Context, src Source, name string) (model.Classifier, error) {
	payload, err := src.Open(ctx, name)
	if err != nil {
		return nil, &Error{Name: name, Err: err}
	}
	c, err := model.DecodeClassifier(payload)
	if err != nil {
		return nil, &Error{Name: name, Err: err}
	}
	return c, nil
}

// Status is the outcome of loading one artifact.
type Status struct {
	Name string
	Err  error
}

// Check loads every artifact independently and reports each outcome,
// without stopping at the first failure.
func Check(ctx context.Context, src Source, names Names) []Status {
	out := make([]Status, 0, 3)
	_, err := loadScaler(ctx, src, names.Scaler)
	out = append(out, Status{Name: names.Scaler, Err: err})
	for _, name := range []string{names.SVM, names.RandomForest} {
		_, err := loadClassifier(ctx, src, name)
		out = append(out, Status{Name: name, Err: err})
	}
	return out
}

// Holder loads a Bundle at most once and caches the outcome, error
// included, for the life of the process.
type Holder struct {
	src   Source
	names Names

	once   sync.Once
	bundle *Bundle
	err    error
}

func NewHolder(src Source, names Names) *Holder {
	return &Holder{src: src, names: names}
}

// Load returns the cached bundle, reading the source on first call only.
func (h *Holder) Load(ctx context.Context) (*Bundle, error) {
	h.once.Do(func() {
		h.bundle, h.err = Load(ctx, h.src, h.names)
	})
	return h.bundle, h.err
}
