package topic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/podplanner/internal/database"
)

const topicColumns = `id, group_id, name, url, is_archived, is_deleted, created_at`

// Repository handles topic data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new topic repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTopic(row scanner) (*Topic, error) {
	t := &Topic{}
	err := row.Scan(&t.ID, &t.GroupID, &t.Name, &t.URL, &t.IsArchived, &t.IsDeleted, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new topic
func (r *Repository) Create(ctx context.Context, groupID int64, name, url *string) (*Topic, error) {
	query := `
		INSERT INTO topics (group_id, name, url)
		VALUES ($1, $2, $3)
		RETURNING ` + topicColumns

	t, err := scanTopic(database.Conn(ctx, r.db).QueryRowContext(ctx, query, groupID, name, url))
	if err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	return t, nil
}

// GetByID retrieves a topic by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`

	t, err := scanTopic(database.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return t, nil
}

// ListByGroup retrieves every topic of a group, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE group_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	var topics []*Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	return topics, nil
}

// Update applies a partial update; nil fields are left unchanged
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateTopicRequest) (*Topic, error) {
	query := `
		UPDATE topics
		SET name = COALESCE($2, name),
		    url = COALESCE($3, url),
		    is_archived = COALESCE($4, is_archived),
		    is_deleted = COALESCE($5, is_deleted)
		WHERE id = $1
		RETURNING ` + topicColumns

	t, err := scanTopic(database.Conn(ctx, r.db).QueryRowContext(ctx, query,
		id, req.Name, req.URL, req.IsArchived, req.IsDeleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}
	return t, nil
}
