package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/config"
	"github.com/Skufu/GoRocky/internal/logging"
	"github.com/Skufu/GoRocky/internal/predict"
	"github.com/Skufu/GoRocky/internal/server"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run owns every deferred close; main only maps its error to an exit code.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return err
	}

	log, closer := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer closer.Close()

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	var pool *pgxpool.Pool
	if cfg.NeedsDB() {
		pool, err = connectDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			return err
		}
		defer pool.Close()
	}

	holder := artifact.NewHolder(artifactSource(cfg, pool), cfg.Artifacts)
	bundle, err := holder.Load(ctx)
	if err != nil {
		// no safe default exists without all three artifacts
		log.Error().Err(err).Str("source", cfg.ArtifactSource).Msg("model artifacts unavailable")
		return err
	}
	log.Info().
		Str("source", cfg.ArtifactSource).
		Str("scaler", cfg.Artifacts.Scaler).
		Str("svm", cfg.Artifacts.SVM).
		Str("random_forest", cfg.Artifacts.RandomForest).
		Msg("model artifacts loaded")

	staticRoot := cfg.StaticRoot
	if staticRoot == "" {
		staticRoot = server.DetectStaticRoot()
	}

	var db server.HealthChecker
	if cfg.EnableDB && pool != nil {
		db = pool
	}

	router := server.NewRouter(server.Options{
		Pipeline:     predict.New(bundle),
		DB:           db,
		StaticRoot:   staticRoot,
		DefaultModel: cfg.DefaultModel,
		PredictRPS:   cfg.PredictRPS,
		PredictBurst: cfg.PredictBurst,
		Logger:       log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	log.Info().Str("port", cfg.Port).Str("default_model", string(cfg.DefaultModel)).Msg("server listening")
	return waitForShutdown(srv, serveErr, log)
}

func artifactSource(cfg *config.Config, pool *pgxpool.Pool) artifact.Source {
	if cfg.ArtifactSource == config.SourcePostgres {
		return artifact.PostgresSource{DB: pool}
	}
	return artifact.FileSource{Dir: cfg.ArtifactDir}
}

// connectDB retries with exponential backoff for up to 30 seconds so the
// service can start alongside its database.
func connectDB(ctx context.Context, url string, log zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	var pool *pgxpool.Pool
	operation := func() error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			return fmt.Errorf("ping db: %w", err)
		}
		pool = p
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = 30 * time.Second
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("database not ready")
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(strategy, ctx), notify); err != nil {
		return nil, err
	}
	return pool, nil
}

func waitForShutdown(srv *http.Server, serveErr <-chan error, log zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		log.Error().Err(err).Msg("server error")
		return err
	case <-stop:
	}

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
