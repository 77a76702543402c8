package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/artifact/artifacttest"
	"github.com/Skufu/GoRocky/internal/model"
	"github.com/Skufu/GoRocky/internal/predict"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

const scenarioBody = `{
	"model": "Random Forest",
	"features": {
		"age": 57, "sex": 1, "cp": 0, "trestbps": 130, "chol": 246, "fbs": 0,
		"restecg": 0, "thalach": 150, "exang": 0, "oldpeak": 1.0, "slope": 0,
		"ca": 0, "thal": 1
	}
}`

func fixturePipeline() *predict.Pipeline {
	return predict.New(&artifact.Bundle{
		Scaler:       artifacttest.Scaler(),
		SVM:          artifacttest.SVM(),
		RandomForest: artifacttest.Forest(),
	})
}

func newTestRouter(opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if opts.Pipeline == nil {
		opts.Pipeline = fixturePipeline()
	}
	opts.Logger = zerolog.Nop()
	return NewRouter(opts)
}

func postPredict(router *gin.Engine, body string, header ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(Options{DB: fakeDB{}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestRouterReadyz(t *testing.T) {
	router := newTestRouter(Options{DB: fakeDB{err: errors.New("connection refused")}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/readyz", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	router = newTestRouter(Options{})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"disabled"`) {
		t.Fatalf("expected ready without db, got %d %s", w.Code, w.Body.String())
	}
}

func TestPredictScenario(t *testing.T) {
	router := newTestRouter(Options{})
	w := postPredict(router, scenarioBody)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload predictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Label != 0 && payload.Label != 1 {
		t.Fatalf("unexpected label: %d", payload.Label)
	}
	if payload.RiskScore < 0 || payload.RiskScore > 1 {
		t.Fatalf("risk out of range: %v", payload.RiskScore)
	}
	if payload.Model != predict.RandomForest {
		t.Fatalf("unexpected model: %s", payload.Model)
	}
	if payload.View.RiskPercent != "58.7%" {
		t.Fatalf("unexpected percentage: %s", payload.View.RiskPercent)
	}
}

func TestPredictUsesDefaultModelAndLanguage(t *testing.T) {
	router := newTestRouter(Options{DefaultModel: predict.SVM})
	body := strings.Replace(scenarioBody, `"model": "Random Forest",`, "", 1)
	w := postPredict(router, body, "Accept-Language", "id-ID,id;q=0.9")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload predictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Model != predict.SVM {
		t.Fatalf("expected default svm, got %s", payload.Model)
	}
	if !strings.HasPrefix(payload.View.Verdict, "HASIL:") {
		t.Fatalf("expected indonesian verdict, got %q", payload.View.Verdict)
	}
}

func TestPredictValidation(t *testing.T) {
	router := newTestRouter(Options{})
	body := strings.Replace(scenarioBody, `"trestbps": 130`, `"trestbps": 0`, 1)
	w := postPredict(router, body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for validation failure, got %d", w.Code)
	}
	lower := strings.ToLower(w.Body.String())
	if !strings.Contains(lower, "validation_failed") || !strings.Contains(lower, "blood pressure") {
		t.Fatalf("expected validation error response, got %s", w.Body.String())
	}
}

func TestPredictRejectsBadRequests(t *testing.T) {
	router := newTestRouter(Options{})
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"features":`, "invalid_payload"},
		{"missing features", `{"model":"svm"}`, "invalid_payload"},
		{"missing one field", strings.Replace(scenarioBody, `"thal": 1`, `"thalx": 1`, 1), "invalid_payload"},
		{"fractional age", strings.Replace(scenarioBody, `"age": 57`, `"age": 57.5`, 1), "invalid_payload"},
		{"unknown model", strings.Replace(scenarioBody, "Random Forest", "xgboost", 1), "unknown_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postPredict(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, w.Body.String())
			}
		})
	}
}

type brokenClassifier struct{}

func (brokenClassifier) Predict([]float64) (int, error) { return 1, nil }

func (brokenClassifier) PredictProba([]float64) ([]float64, error) {
	return nil, model.ErrNoProbability
}

func TestPredictFailureIsGeneric(t *testing.T) {
	pipeline := predict.New(&artifact.Bundle{
		Scaler:       artifacttest.Scaler(),
		SVM:          brokenClassifier{},
		RandomForest: artifacttest.Forest(),
	})
	router := newTestRouter(Options{Pipeline: pipeline})
	body := strings.Replace(scenarioBody, "Random Forest", "svm", 1)

	w := postPredict(router, body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "prediction_failed") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "probability estimator") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}

	// the other model and later requests are unaffected
	w = postPredict(router, scenarioBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after failure, got %d", w.Code)
	}
}

func TestPredictRateLimited(t *testing.T) {
	router := newTestRouter(Options{PredictRPS: 0.001, PredictBurst: 1})
	if w := postPredict(router, scenarioBody); w.Code != http.StatusOK {
		t.Fatalf("expected first request through, got %d", w.Code)
	}
	w := postPredict(router, scenarioBody)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestFormMetadata(t *testing.T) {
	router := newTestRouter(Options{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/form", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Fields []struct {
			Name string  `json:"name"`
			Min  float64 `json:"min"`
			Max  float64 `json:"max"`
		} `json:"fields"`
		Models       []modelChoice `json:"models"`
		DefaultModel string        `json:"defaultModel"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Fields) != 13 || payload.Fields[3].Name != "trestbps" || payload.Fields[3].Max != 200 {
		t.Fatalf("unexpected fields: %+v", payload.Fields)
	}
	if len(payload.Models) != 2 || payload.DefaultModel != "random_forest" {
		t.Fatalf("unexpected models: %+v %s", payload.Models, payload.DefaultModel)
	}
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>heart</h1>"), 0o600); err != nil {
		t.Fatal(err)
	}
	router := newTestRouter(Options{StaticRoot: dir})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "heart") {
		t.Fatalf("expected index, got %d %s", w.Code, w.Body.String())
	}
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}
