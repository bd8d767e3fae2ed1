package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CredentialTables lists the tables holding single-use secrets
var CredentialTables = []string{
	"password_reset_tokens",
	"group_invitations",
	"group_invite_codes",
}

// SweepResult is the number of rows removed (or removable) per table
type SweepResult struct {
	Table string
	Rows  int64
}

// Sweep removes used or expired credentials. With dryRun it only counts them.
func Sweep(ctx context.Context, db *sql.DB, now time.Time, dryRun bool) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(CredentialTables))

	err := NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
		conn := Conn(ctx, db)
		for _, table := range CredentialTables {
			var n int64
			if dryRun {
				query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE used = true OR expires_at <= $1", table)
				if err := conn.QueryRowContext(ctx, query, now).Scan(&n); err != nil {
					return fmt.Errorf("failed to count %s: %w", table, err)
				}
			} else {
				query := fmt.Sprintf("DELETE FROM %s WHERE used = true OR expires_at <= $1", table)
				res, err := conn.ExecContext(ctx, query, now)
				if err != nil {
					return fmt.Errorf("failed to sweep %s: %w", table, err)
				}
				if n, err = res.RowsAffected(); err != nil {
					return fmt.Errorf("failed to sweep %s: %w", table, err)
				}
			}
			results = append(results, SweepResult{Table: table, Rows: n})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
