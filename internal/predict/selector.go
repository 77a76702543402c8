package predict

import (
	"errors"
	"fmt"
	"strings"
)

// Selector chooses which classifier serves a request.
type Selector string

const (
	SVM          Selector = "svm"
	RandomForest Selector = "random_forest"
)

var ErrUnknownSelector = errors.New("unknown model selector")

// ParseSelector accepts the machine names and the human labels a form
// shows, e.g. "SVM (accuracy 92.2%)" or "Random Forest".
func ParseSelector(s string) (Selector, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "svm" || strings.HasPrefix(v, "svm "):
		return SVM, nil
	case v == "rf" || v == "random_forest" || strings.HasPrefix(v, "random forest"):
		return RandomForest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSelector, s)
	}
}

// Label is the human-facing model name.
func (s Selector) Label() string {
	switch s {
	case SVM:
		return "SVM"
	case RandomForest:
		return "Random Forest"
	default:
		return string(s)
	}
}

// Selectors lists the available choices in display order.
func Selectors() []Selector {
	return []Selector{RandomForest, SVM}
}
