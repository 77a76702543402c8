package features

import (
	"fmt"
	"math"
	"strings"
)

// FieldError reports one out-of-domain value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every rejected field of a record.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "invalid patient features: " + strings.Join(parts, "; ")
}

// Validate applies the collection-step constraints: numeric ranges for
// measured fields and membership for enumerated ones. It returns nil or
// a ValidationErrors.
func (p PatientFeatures) Validate() error {
	var errs ValidationErrors
	for _, f := range fieldTable {
		if msg := f.check(f.get(p)); msg != "" {
			errs = append(errs, FieldError{Field: f.Name, Message: msg})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f Field) check(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprintf("%s must be a finite number", f.Label)
	}
	switch f.Kind {
	case KindChoice:
		for _, c := range f.Choices {
			if float64(c.Value) == v {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of %s", f.Label, choiceList(f.Choices))
	default:
		if v < f.Min || v > f.Max {
			return fmt.Sprintf("%s must be between %s and %s", f.Label, formatBound(f.Min), formatBound(f.Max))
		}
	}
	return ""
}

func choiceList(choices []Choice) string {
	values := make([]string, 0, len(choices))
	for _, c := range choices {
		values = append(values, fmt.Sprint(c.Value))
	}
	return strings.Join(values, ", ")
}

func formatBound(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}
