package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_client_state.up.sql
var clientStateSQL string

const clientStateTable = "client_state"

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasTable(ctx, clientStateTable)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("client state table missing; applying migration", "table", clientStateTable)
		if _, err := db.Pool.Exec(ctx, clientStateSQL); err != nil {
			return fmt.Errorf("apply client state migration: %w", err)
		}
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasTable(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			  AND table_name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
