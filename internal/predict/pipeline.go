// Package predict turns a patient record and a model choice into a risk
// verdict: scale, classify, estimate the positive-class probability.
package predict

import (
	"errors"
	"fmt"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/features"
	"github.com/Skufu/GoRocky/internal/model"
)

// ErrPredictionFailure is matched by every error Predict returns once the
// selector is known.
var ErrPredictionFailure = errors.New("prediction failed")

// Failure aborts a single prediction. Artifacts are left untouched.
type Failure struct {
	Model Selector
	Stage string
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Model.Label(), f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) Is(target error) bool {
	return target == ErrPredictionFailure
}

// Result is the outcome of one prediction.
type Result struct {
	Label     int      `json:"label"`
	RiskScore float64  `json:"riskScore"`
	Model     Selector `json:"model"`
}

// Positive reports whether the classifier flagged disease.
func (r Result) Positive() bool {
	return r.Label == 1
}

// Pipeline runs predictions against a loaded artifact bundle. It holds
// no per-request state and is safe for concurrent use.
type Pipeline struct {
	bundle *artifact.Bundle
}

func New(bundle *artifact.Bundle) *Pipeline {
	return &Pipeline{bundle: bundle}
}

// Predict assembles the record in canonical order and runs it.
func (p *Pipeline) Predict(in features.PatientFeatures, sel Selector) (Result, error) {
	return p.PredictVector(in.Vector(), sel)
}

// PredictVector runs an already assembled vector. Positions are trusted.
func (p *Pipeline) PredictVector(x []float64, sel Selector) (res Result, err error) {
	clf, err := p.classifier(sel)
	if err != nil {
		return Result{}, err
	}

	stage := "scale"
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &Failure{Model: sel, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	scaled, err := p.bundle.Scaler.Transform(x)
	if err != nil {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: err}
	}

	stage = "predict"
	label, err := clf.Predict(scaled)
	if err != nil {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: err}
	}
	if label != 0 && label != 1 {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: fmt.Errorf("label %d is not binary", label)}
	}

	stage = "predict_proba"
	proba, err := clf.PredictProba(scaled)
	if err != nil {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: err}
	}
	if len(proba) != 2 {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: fmt.Errorf("expected 2 class probabilities, got %d", len(proba))}
	}
	risk := proba[1]
	if !(risk >= 0 && risk <= 1) {
		return Result{}, &Failure{Model: sel, Stage: stage, Err: fmt.Errorf("probability %v outside [0,1]", risk)}
	}

	return Result{Label: label, RiskScore: risk, Model: sel}, nil
}

// classifier never substitutes one model for the other.
func (p *Pipeline) classifier(sel Selector) (model.Classifier, error) {
	switch sel {
	case SVM:
		return p.bundle.SVM, nil
	case RandomForest:
		return p.bundle.RandomForest, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, string(sel))
	}
}
