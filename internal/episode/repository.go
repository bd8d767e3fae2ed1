package episode

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/podplanner/internal/database"
)

const episodeColumns = `id, group_id, title, date, status, repeat_pattern, created_at`

// Repository handles episode data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new episode repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (*Episode, error) {
	e := &Episode{}
	var repeat []byte
	if err := row.Scan(&e.ID, &e.GroupID, &e.Title, &e.Date, &e.Status, &repeat, &e.CreatedAt); err != nil {
		return nil, err
	}
	if repeat != nil {
		e.RepeatPattern = json.RawMessage(repeat)
	}
	return e, nil
}

// nullableJSON turns an empty pattern into SQL NULL
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	return string(raw)
}

// Create inserts a new episode
func (r *Repository) Create(ctx context.Context, groupID int64, title string, date time.Time, status Status, repeat json.RawMessage) (*Episode, error) {
	query := `
		INSERT INTO episodes (group_id, title, date, status, repeat_pattern)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		RETURNING ` + episodeColumns

	e, err := scanEpisode(database.Conn(ctx, r.db).QueryRowContext(ctx, query,
		groupID, title, date, status, nullableJSON(repeat)))
	if err != nil {
		return nil, fmt.Errorf("failed to create episode: %w", err)
	}
	return e, nil
}

// GetByID retrieves an episode by its ID, whatever its status
func (r *Repository) GetByID(ctx context.Context, id int64) (*Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id = $1`

	e, err := scanEpisode(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return e, nil
}

// ListByGroup retrieves the non-deleted episodes of a group in date order
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Episode, error) {
	query := `
		SELECT ` + episodeColumns + `
		FROM episodes
		WHERE group_id = $1 AND status <> 'deleted'
		ORDER BY date, id`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	return episodes, nil
}

// Update applies a partial update; nil fields are left unchanged
func (r *Repository) Update(ctx context.Context, id int64, p *Patch) (*Episode, error) {
	query := `
		UPDATE episodes
		SET title = COALESCE($2, title),
		    date = COALESCE($3, date),
		    status = COALESCE($4, status),
		    repeat_pattern = CASE WHEN $5 THEN $6::jsonb ELSE repeat_pattern END
		WHERE id = $1
		RETURNING ` + episodeColumns

	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	e, err := scanEpisode(database.Conn(ctx, r.db).QueryRowContext(ctx, query,
		id, p.Title, p.Date, status, p.SetRepeat, nullableJSON(p.RepeatPattern)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update episode: %w", err)
	}
	return e, nil
}

// SetStatus changes only the status of an episode
func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) (*Episode, error) {
	query := `UPDATE episodes SET status = $2 WHERE id = $1 RETURNING ` + episodeColumns

	e, err := scanEpisode(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update episode status: %w", err)
	}
	return e, nil
}
