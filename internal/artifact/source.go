package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
)

// Source yields the raw bytes of a named artifact.
type Source interface {
	Open(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads artifacts from a directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Open(_ context.Context, name string) ([]byte, error) {
	payload, err := os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no file %s in %s", name, s.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return payload, nil
}

// RowQuerier is the part of a pgx pool the Postgres source needs.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads artifacts from the model_artifacts table.
type PostgresSource struct {
	DB RowQuerier
}

const selectArtifact = `SELECT payload FROM model_artifacts WHERE name = $1`

func (s PostgresSource) Open(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.DB.QueryRow(ctx, selectArtifact, name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no row %q in model_artifacts", name)
	}
	if err != nil {
		return nil, fmt.Errorf("query model_artifacts: %w", err)
	}
	return payload, nil
}
