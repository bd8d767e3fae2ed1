package passwordreset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/podplanner/internal/database"
)

const tokenColumns = `id, user_id, token, expires_at, used, created_at`

// Repository handles reset token persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reset token repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*ResetToken, error) {
	t := &ResetToken{}
	if err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Create stores a reset token for userID
func (r *Repository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*ResetToken, error) {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + tokenColumns

	t, err := scanToken(database.Conn(ctx, r.db).QueryRowContext(ctx, query, userID, token, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}
	return t, nil
}

// FindValid returns the token when it is unused and unexpired at now.
// With lock the row stays locked until the surrounding transaction ends.
func (r *Repository) FindValid(ctx context.Context, token string, now time.Time, lock bool) (*ResetToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM password_reset_tokens
		WHERE token = $1 AND used = false AND expires_at > $2`
	if lock {
		query += ` FOR UPDATE`
	}

	t, err := scanToken(database.Conn(ctx, r.db).QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}
	if !t.Valid(now) {
		return nil, nil
	}
	return t, nil
}

// MarkUsed burns a token
func (r *Repository) MarkUsed(ctx context.Context, id int64) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}
