package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS runs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		organization VARCHAR(255) NOT NULL,
		mode VARCHAR(20) NOT NULL,
		dry_run BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(20) NOT NULL DEFAULT 'running',
		error TEXT,
		started_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		finished_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_organization_started_at ON runs(organization, started_at DESC)`,

	`CREATE TABLE IF NOT EXISTS run_actions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		run_id UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT clock_timestamp()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_run_actions_run_id ON run_actions(run_id, created_at)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
