package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Skufu/GoRocky/internal/predict"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Pipeline     *predict.Pipeline
	DB           HealthChecker
	StaticRoot   string
	DefaultModel predict.Selector
	PredictRPS   float64
	PredictBurst int
	Logger       zerolog.Logger
}

// NewRouter wires the form and result surface around a loaded pipeline.
func NewRouter(opts Options) *gin.Engine {
	if opts.DefaultModel == "" {
		opts.DefaultModel = predict.RandomForest
	}

	router := gin.New()
	router.Use(
		requestLogger(opts.Logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
			MaxAge:       12 * time.Hour,
		}),
	)

	if opts.StaticRoot != "" && fileExists(filepath.Join(opts.StaticRoot, "index.html")) {
		router.Static("/static", opts.StaticRoot)
		router.StaticFile("/", filepath.Join(opts.StaticRoot, "index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		artifacts := "loaded"
		if opts.Pipeline == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "artifacts": "missing"})
			return
		}
		if opts.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "artifacts": artifacts, "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := opts.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"artifacts": artifacts,
				"db":        fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"artifacts": artifacts,
			"db":        "ok",
		})
	})

	h := &handlers{pipeline: opts.Pipeline, defaultModel: opts.DefaultModel, log: opts.Logger}

	api := router.Group("/api")
	api.GET("/form", h.form)

	predictRoutes := api.Group("")
	if opts.PredictRPS > 0 {
		burst := opts.PredictBurst
		if burst <= 0 {
			burst = 1
		}
		predictRoutes.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.PredictRPS), burst)))
	}
	predictRoutes.POST("/predict", h.predict)

	return router
}

// DetectStaticRoot finds the nearest directory holding index.html,
// starting at the working directory and walking up two levels.
func DetectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		filepath.Join(startDir, "web"),
		startDir,
		filepath.Join(filepath.Dir(startDir), "web"),
		filepath.Join(filepath.Dir(filepath.Dir(startDir)), "web"),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
