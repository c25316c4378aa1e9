package migrations

import (
	"context"
	"fmt"

	"solana-risk-engine/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded scripts in order. Scripts use
// IF NOT EXISTS, so reruns are safe.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := pool.Exec(ctx, f.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.name, err)
		}
	}
	return nil
}
