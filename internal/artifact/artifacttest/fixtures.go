// Package artifacttest builds small but well-formed model artifacts for
// tests. Thresholds and weights live in scaled feature space.
package artifacttest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Skufu/GoRocky/internal/features"
	"github.com/Skufu/GoRocky/internal/model"
)

const (
	ScalerName = "scaler.json"
	SVMName    = "model_svm.json"
	RFName     = "model_rf.json"
)

// Scaler is fitted on statistics close to the Cleveland heart data.
func Scaler() *model.StandardScaler {
	return &model.StandardScaler{
		Kind:         model.KindStandardScaler,
		FeatureNames: features.Names(),
		Mean:         []float64{54.4, 0.70, 0.94, 131.6, 246.0, 0.15, 0.53, 149.1, 0.34, 1.07, 1.39, 0.75, 2.32},
		Scale:        []float64{9.07, 0.46, 1.03, 17.5, 51.6, 0.36, 0.53, 23.0, 0.47, 1.17, 0.62, 1.03, 0.62},
	}
}

// SVM is a linear SVC with Platt coefficients.
func SVM() *model.SVC {
	a, b := -1.7, 0.05
	return &model.SVC{
		Kind:    model.KindSVC,
		Classes: []int{0, 1},
		Kernel:  "linear",
		SupportVectors: [][]float64{
			{0.2, 0.5, -0.6, 0.3, 0.2, 0.1, -0.2, -0.5, 0.6, 0.7, -0.4, 0.8, 0.7},
			{-0.1, -0.3, 0.4, -0.2, -0.1, 0.0, 0.1, 0.4, -0.5, -0.6, 0.3, -0.7, -0.6},
		},
		DualCoef:  []float64{1.0, -1.0},
		Intercept: 0.1,
		ProbA:     &a,
		ProbB:     &b,
	}
}

// Forest is a three-tree random forest over cp/ca, thal/oldpeak and
// thalach/exang.
func Forest() *model.RandomForest {
	leaf := func(neg, pos float64) model.TreeNode {
		return model.TreeNode{Feature: -1, Left: -1, Right: -1, Value: []float64{neg, pos}}
	}
	split := func(feature int, threshold float64, left, right int) model.TreeNode {
		return model.TreeNode{Feature: feature, Threshold: threshold, Left: left, Right: right}
	}
	return &model.RandomForest{
		Kind:      model.KindRandomForest,
		Classes:   []int{0, 1},
		NFeatures: features.Count,
		Trees: []model.Tree{
			{Nodes: []model.TreeNode{
				split(2, -0.4, 1, 4),
				split(11, 0.0, 2, 3),
				leaf(30, 10),
				leaf(45, 5),
				leaf(8, 40),
			}},
			{Nodes: []model.TreeNode{
				split(12, 0.3, 1, 2),
				split(9, 0.5, 3, 4),
				leaf(50, 12),
				leaf(12, 38),
				leaf(35, 15),
			}},
			{Nodes: []model.TreeNode{
				split(7, -0.3, 1, 2),
				leaf(40, 10),
				split(8, 0.3, 3, 4),
				leaf(15, 45),
				leaf(30, 20),
			}},
		},
	}
}

// Payloads returns the three documents keyed by their default names.
func Payloads(t testing.TB) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		ScalerName: mustMarshal(t, Scaler()),
		SVMName:    mustMarshal(t, SVM()),
		RFName:     mustMarshal(t, Forest()),
	}
}

// WriteDir writes the three documents into dir, skipping any name in omit.
func WriteDir(t testing.TB, dir string, omit ...string) {
	t.Helper()
	skip := make(map[string]bool, len(omit))
	for _, name := range omit {
		skip[name] = true
	}
	for name, payload := range Payloads(t) {
		if skip[name] {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func mustMarshal(t testing.TB, v any) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return payload
}
