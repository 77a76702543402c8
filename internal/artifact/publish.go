package artifact

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of a pgx pool Publish needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createArtifactTable = `
CREATE TABLE IF NOT EXISTS model_artifacts (
    name TEXT PRIMARY KEY,
    payload BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertArtifact = `
INSERT INTO model_artifacts (name, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

// Publish copies all three artifacts from src into the model_artifacts
// table. Nothing is written unless every artifact decodes.
func Publish(ctx context.Context, db Execer, src Source, names Names) error {
	for _, st := range Check(ctx, src, names) {
		if st.Err != nil {
			return st.Err
		}
	}

	if _, err := db.Exec(ctx, createArtifactTable); err != nil {
		return fmt.Errorf("create model_artifacts: %w", err)
	}
	for _, name := range names.all() {
		payload, err := src.Open(ctx, name)
		if err != nil {
			return &Error{Name: name, Err: err}
		}
		if _, err := db.Exec(ctx, upsertArtifact, name, payload); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}
	return nil
}
