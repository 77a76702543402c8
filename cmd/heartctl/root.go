package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/GoRocky/internal/artifact"
	"github.com/Skufu/GoRocky/internal/config"
	"github.com/Skufu/GoRocky/internal/logging"
)

var version = "dev"

// globals are the persistent flags every subcommand shares.
type globals struct {
	source      string
	dir         string
	databaseURL string
	names       artifact.Names
	debug       bool

	log    zerolog.Logger
	closer io.Closer
}

func newRootCommand() *cobra.Command {
	g := &globals{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "heartctl",
		Short: "heartctl - operate the heart disease prediction models",
		Long: `heartctl runs one-off predictions against the exported model artifacts,
checks that a deployment can load them, and publishes them to Postgres.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.source, "source", envOr("ARTIFACT_SOURCE", config.SourceFile), "artifact source: file or postgres")
	flags.StringVar(&g.dir, "dir", envOr("ARTIFACT_DIR", "."), "directory holding the exported artifacts")
	flags.StringVar(&g.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	defaults := artifact.DefaultNames()
	flags.StringVar(&g.names.Scaler, "scaler", envOr("SCALER_ARTIFACT", defaults.Scaler), "scaler artifact name")
	flags.StringVar(&g.names.SVM, "svm", envOr("SVM_ARTIFACT", defaults.SVM), "SVM artifact name")
	flags.StringVar(&g.names.RandomForest, "rf", envOr("RF_ARTIFACT", defaults.RandomForest), "random forest artifact name")
	flags.BoolVar(&g.debug, "debug", false, "Enable debug logging")

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := "warn"
		if g.debug {
			level = "debug"
		}
		g.log, g.closer = logging.New(logging.Options{Level: level})
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if g.closer != nil {
			_ = g.closer.Close()
		}
	}

	cmd.AddCommand(newPredictCommand(g))
	cmd.AddCommand(newCheckCommand(g))
	cmd.AddCommand(newPublishCommand(g))
	cmd.AddCommand(newFieldsCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// openSource returns the configured artifact source and a release func.
func (g *globals) openSource(ctx context.Context) (artifact.Source, func(), error) {
	switch g.source {
	case config.SourceFile:
		g.log.Debug().Str("dir", g.dir).Msg("reading artifacts from directory")
		return artifact.FileSource{Dir: g.dir}, func() {}, nil
	case config.SourcePostgres:
		pool, err := g.connect(ctx)
		if err != nil {
			return nil, nil, err
		}
		return artifact.PostgresSource{DB: pool}, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("--source must be %q or %q, got %q", config.SourceFile, config.SourcePostgres, g.source)
	}
}

func (g *globals) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if g.databaseURL == "" {
		return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, g.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	g.log.Debug().Msg("connected to postgres")
	return pool, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
