package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/predict"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	Port    string
	GinMode string

	ArtifactSource string
	ArtifactDir    string
	Artifacts      artifact.Names

	DatabaseURL string
	EnableDB    bool

	DefaultModel predict.Selector

	PredictRPS   float64
	PredictBurst int

	StaticRoot string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads the environment, seeded from a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := artifact.DefaultNames()
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		ArtifactSource: strings.ToLower(getEnv("ARTIFACT_SOURCE", SourceFile)),
		ArtifactDir:    getEnv("ARTIFACT_DIR", "."),
		Artifacts: artifact.Names{
			Scaler:       getEnv("SCALER_ARTIFACT", defaults.Scaler),
			SVM:          getEnv("SVM_ARTIFACT", defaults.SVM),
			RandomForest: getEnv("RF_ARTIFACT", defaults.RandomForest),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		StaticRoot:  os.Getenv("STATIC_ROOT"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	sel, err := predict.ParseSelector(getEnv("DEFAULT_MODEL", string(predict.RandomForest)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MODEL: %w", err)
	}
	cfg.DefaultModel = sel

	if cfg.PredictRPS, err = strconv.ParseFloat(getEnv("PREDICT_RPS", "20"), 64); err != nil || cfg.PredictRPS < 0 {
		return nil, fmt.Errorf("PREDICT_RPS must be a non-negative number")
	}
	if cfg.PredictBurst, err = strconv.Atoi(getEnv("PREDICT_BURST", "40")); err != nil || cfg.PredictBurst < 0 {
		return nil, fmt.Errorf("PREDICT_BURST must be a non-negative integer")
	}

	switch cfg.ArtifactSource {
	case SourceFile:
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when ARTIFACT_SOURCE=postgres")
		}
	default:
		return nil, fmt.Errorf("ARTIFACT_SOURCE must be %q or %q, got %q", SourceFile, SourcePostgres, cfg.ArtifactSource)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

// NeedsDB reports whether a database connection must be opened.
func (c *Config) NeedsDB() bool {
	return c.EnableDB || c.ArtifactSource == SourcePostgres
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
