package predict

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/artifact/artifacttest"
	"github.com/Skufu/GoRocky/internal/features"
	"github.com/Skufu/GoRocky/internal/model"
)

func fixtureBundle() *artifact.Bundle {
	return &artifact.Bundle{
		Scaler:       artifacttest.Scaler(),
		SVM:          artifacttest.SVM(),
		RandomForest: artifacttest.Forest(),
	}
}

func scenario() features.PatientFeatures {
	return features.PatientFeatures{
		Age: 57, Sex: 1, CP: 0, Trestbps: 130, Chol: 246, FBS: 0, RestECG: 0,
		Thalach: 150, Exang: 0, Oldpeak: 1.0, Slope: 0, CA: 0, Thal: 1,
	}
}

// spyClassifier counts calls and returns canned outputs.
type spyClassifier struct {
	label        int
	proba        []float64
	predictErr   error
	probaErr     error
	panicOn      string
	predicts     int
	probaCalls   int
	lastFeatures []float64
}

func (s *spyClassifier) Predict(x []float64) (int, error) {
	s.predicts++
	s.lastFeatures = x
	if s.panicOn == "predict" {
		var m map[string]int
		m["boom"] = 1
	}
	return s.label, s.predictErr
}

func (s *spyClassifier) PredictProba(x []float64) ([]float64, error) {
	s.probaCalls++
	return s.proba, s.probaErr
}

type identityScaler struct{}

func (identityScaler) Transform(x []float64) ([]float64, error) {
	return append([]float64(nil), x...), nil
}

func TestScenarioRandomForest(t *testing.T) {
	p := New(fixtureBundle())
	res, err := p.Predict(scenario(), RandomForest)
	require.NoError(t, err)

	assert.Equal(t, RandomForest, res.Model)
	assert.Contains(t, []int{0, 1}, res.Label)
	assert.GreaterOrEqual(t, res.RiskScore, 0.0)
	assert.LessOrEqual(t, res.RiskScore, 1.0)

	// cp and ca go left, thal and oldpeak go left, thalach right then exang left
	assert.Equal(t, 1, res.Label)
	assert.InDelta(t, (10.0/40+38.0/50+45.0/60)/3, res.RiskScore, 1e-9)
}

func TestScenarioSVM(t *testing.T) {
	p := New(fixtureBundle())
	res, err := p.Predict(scenario(), SVM)
	require.NoError(t, err)
	assert.Equal(t, SVM, res.Model)
	assert.Contains(t, []int{0, 1}, res.Label)
	assert.GreaterOrEqual(t, res.RiskScore, 0.0)
	assert.LessOrEqual(t, res.RiskScore, 1.0)
}

func randomFeatures(rnd *rand.Rand) features.PatientFeatures {
	var p features.PatientFeatures
	for _, f := range features.Fields() {
		var v float64
		switch f.Kind {
		case features.KindChoice:
			v = float64(f.Choices[rnd.Intn(len(f.Choices))].Value)
		case features.KindFloat:
			v = f.Min + rnd.Float64()*(f.Max-f.Min)
		default:
			v = f.Min + float64(rnd.Intn(int(f.Max-f.Min)+1))
		}
		f.Set(&p, v)
	}
	return p
}

func TestOutputsStayInRange(t *testing.T) {
	p := New(fixtureBundle())
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		in := randomFeatures(rnd)
		require.NoError(t, in.Validate())
		for _, sel := range Selectors() {
			res, err := p.Predict(in, sel)
			require.NoError(t, err)
			assert.Contains(t, []int{0, 1}, res.Label)
			assert.True(t, res.RiskScore >= 0 && res.RiskScore <= 1, "risk %v", res.RiskScore)
		}
	}
}

func TestDeterministic(t *testing.T) {
	p := New(fixtureBundle())
	for _, sel := range Selectors() {
		a, err := p.Predict(scenario(), sel)
		require.NoError(t, err)
		b, err := p.Predict(scenario(), sel)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSelectorNeverTouchesOtherModel(t *testing.T) {
	svm := &spyClassifier{label: 1, proba: []float64{0.2, 0.8}}
	rf := &spyClassifier{label: 0, proba: []float64{0.9, 0.1}}
	p := New(&artifact.Bundle{Scaler: identityScaler{}, SVM: svm, RandomForest: rf})

	res, err := p.Predict(scenario(), SVM)
	require.NoError(t, err)
	assert.Equal(t, Result{Label: 1, RiskScore: 0.8, Model: SVM}, res)
	assert.Equal(t, 1, svm.predicts)
	assert.Equal(t, 1, svm.probaCalls)
	assert.Zero(t, rf.predicts)
	assert.Zero(t, rf.probaCalls)

	res, err = p.Predict(scenario(), RandomForest)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, res.RiskScore, 1e-12)
	assert.Equal(t, 1, rf.predicts)
	assert.Equal(t, 1, svm.predicts)
}

func TestFeatureOrderSensitivity(t *testing.T) {
	p := New(fixtureBundle())
	base := scenario().Vector()

	for _, sel := range Selectors() {
		want, err := p.PredictVector(base, sel)
		require.NoError(t, err)

		changed := false
		for i := 0; i < len(base) && !changed; i++ {
			for j := i + 1; j < len(base); j++ {
				if base[i] == base[j] {
					continue
				}
				permuted := append([]float64(nil), base...)
				permuted[i], permuted[j] = permuted[j], permuted[i]
				got, err := p.PredictVector(permuted, sel)
				require.NoError(t, err)
				if got != want {
					changed = true
					break
				}
			}
		}
		assert.True(t, changed, "%s ignored field positions", sel)
	}
}

func TestFailureIsReportedNotMasked(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		svm   *spyClassifier
		stage string
	}{
		{"predict error", &spyClassifier{predictErr: boom}, "predict"},
		{"no probability estimator", &spyClassifier{probaErr: model.ErrNoProbability}, "predict_proba"},
		{"non binary label", &spyClassifier{label: 2, proba: []float64{0.5, 0.5}}, "predict"},
		{"wrong proba shape", &spyClassifier{proba: []float64{1}}, "predict_proba"},
		{"proba out of range", &spyClassifier{proba: []float64{-0.5, 1.5}}, "predict_proba"},
		{"panic in classifier", &spyClassifier{panicOn: "predict"}, "predict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := &spyClassifier{label: 0, proba: []float64{1, 0}}
			p := New(&artifact.Bundle{Scaler: identityScaler{}, SVM: tt.svm, RandomForest: rf})

			res, err := p.Predict(scenario(), SVM)
			require.Error(t, err)
			assert.Equal(t, Result{}, res)
			assert.True(t, errors.Is(err, ErrPredictionFailure))

			var f *Failure
			require.True(t, errors.As(err, &f))
			assert.Equal(t, tt.stage, f.Stage)
			assert.Equal(t, SVM, f.Model)
			assert.Zero(t, rf.predicts, "must not fall back to the other model")
		})
	}
}

func TestMalformedVectorFails(t *testing.T) {
	p := New(fixtureBundle())
	_, err := p.PredictVector([]float64{1, 2, 3}, RandomForest)
	require.True(t, errors.Is(err, ErrPredictionFailure))
	assert.True(t, errors.Is(err, model.ErrDimension))

	// the bundle is still usable afterwards
	_, err = p.Predict(scenario(), RandomForest)
	assert.NoError(t, err)
}

func TestUnknownSelector(t *testing.T) {
	p := New(fixtureBundle())
	_, err := p.Predict(scenario(), Selector("xgboost"))
	assert.True(t, errors.Is(err, ErrUnknownSelector))
	assert.False(t, errors.Is(err, ErrPredictionFailure))
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in   string
		want Selector
	}{
		{"svm", SVM},
		{"SVM (Akurasi 92.2%)", SVM},
		{"random_forest", RandomForest},
		{"rf", RandomForest},
		{"Random Forest (Akurasi 100%)", RandomForest},
		{"  Random Forest ", RandomForest},
	}
	for _, tt := range tests {
		got, err := ParseSelector(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSelector("svmish")
	assert.True(t, errors.Is(err, ErrUnknownSelector))
	_, err = ParseSelector("")
	assert.Error(t, err)
}

func TestPipelineFromLoadedArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacttest.WriteDir(t, dir)
	h := artifact.NewHolder(artifact.FileSource{Dir: dir}, artifact.DefaultNames())
	b, err := h.Load(context.Background())
	require.NoError(t, err)

	res, err := New(b).Predict(scenario(), RandomForest)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Label)
}
