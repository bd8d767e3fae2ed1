package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion is the schema version this build expects. Bump it when schema.sql changes.
const SchemaVersion = 1

// ErrSchemaMismatch indicates the database was initialized by a different schema version
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Migrate creates the schema on an empty database and verifies the version otherwise.
// It reports whether the schema was created by this call.
func Migrate(ctx context.Context, db *sql.DB) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'schema_version')",
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if exists {
		var version int
		err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("failed to read schema version: %w", err)
		}
		if err == nil {
			if version != SchemaVersion {
				return false, fmt.Errorf("%w: database has version %d, expected %d",
					ErrSchemaMismatch, version, SchemaVersion)
			}
			return false, nil
		}
	}

	err = NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
		conn := Conn(ctx, db)
		if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if _, err := conn.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES ($1)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
