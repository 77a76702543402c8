package model

import (
	"errors"
	"fmt"
	"math"
)

// SVC is a binary support vector classifier with optional Platt scaling.
//
// Decision values are signed so that positive favours Classes[1], as in
// sklearn's decision_function. ProbA and ProbB apply to that value:
// P(Classes[1]) = 1/(1+exp(ProbA*f+ProbB)). sklearn's probA_/probB_ refer
// to libsvm's unflipped value, so an exporter writes prob_a = probA_ and
// prob_b = -probB_.
type SVC struct {
	Kind           string      `json:"kind"`
	Classes        []int       `json:"classes"`
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
	ProbA          *float64    `json:"prob_a,omitempty"`
	ProbB          *float64    `json:"prob_b,omitempty"`
}

// Decision returns the signed distance from the separating surface.
// Positive values favour Classes[1].
func (m *SVC) Decision(x []float64) (float64, error) {
	if len(m.SupportVectors) > 0 && len(x) != len(m.SupportVectors[0]) {
		return 0, fmt.Errorf("%w: svc expects %d, got %d", ErrDimension, len(m.SupportVectors[0]), len(x))
	}
	sum := m.Intercept
	for i, sv := range m.SupportVectors {
		sum += m.DualCoef[i] * m.kernel(sv, x)
	}
	return sum, nil
}

func (m *SVC) Predict(x []float64) (int, error) {
	f, err := m.Decision(x)
	if err != nil {
		return 0, err
	}
	if f > 0 {
		return m.Classes[1], nil
	}
	return m.Classes[0], nil
}

func (m *SVC) PredictProba(x []float64) ([]float64, error) {
	if m.ProbA == nil || m.ProbB == nil {
		return nil, ErrNoProbability
	}
	f, err := m.Decision(x)
	if err != nil {
		return nil, err
	}
	p := sigmoidPredict(f, *m.ProbA, *m.ProbB)
	return []float64{1 - p, p}, nil
}

func (m *SVC) kernel(a, b []float64) float64 {
	switch m.Kernel {
	case "rbf":
		var d float64
		for i := range a {
			diff := a[i] - b[i]
			d += diff * diff
		}
		return math.Exp(-m.Gamma * d)
	case "poly":
		return math.Pow(m.Gamma*dot(a, b)+m.Coef0, float64(m.Degree))
	case "sigmoid":
		return math.Tanh(m.Gamma*dot(a, b) + m.Coef0)
	default:
		return dot(a, b)
	}
}

func (m *SVC) validate() error {
	if err := validateClasses(m.Classes); err != nil {
		return fmt.Errorf("svc: %w", err)
	}
	switch m.Kernel {
	case "linear", "rbf", "poly", "sigmoid":
	default:
		return fmt.Errorf("svc: %w: kernel %q", ErrUnsupported, m.Kernel)
	}
	if len(m.SupportVectors) == 0 {
		return errors.New("svc: no support vectors")
	}
	if len(m.SupportVectors) != len(m.DualCoef) {
		return fmt.Errorf("svc: %d support vectors but %d dual coefficients", len(m.SupportVectors), len(m.DualCoef))
	}
	width := len(m.SupportVectors[0])
	for i, sv := range m.SupportVectors {
		if len(sv) != width {
			return fmt.Errorf("svc: support vector %d has %d features, want %d", i, len(sv), width)
		}
	}
	if m.Kernel == "poly" && m.Degree <= 0 {
		m.Degree = 3
	}
	return nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// sigmoidPredict is the Platt estimate of P(Classes[1] | f), written so
// neither branch overflows.
func sigmoidPredict(f, a, b float64) float64 {
	fApB := f*a + b
	if fApB >= 0 {
		e := math.Exp(-fApB)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(fApB))
}
