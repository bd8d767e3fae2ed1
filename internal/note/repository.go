package note

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/podplanner/internal/database"
)

// Repository handles topic note persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new note repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a member's note on a topic, overwriting any previous one
func (r *Repository) Upsert(ctx context.Context, topicID, userID int64, content string) (*Note, error) {
	query := `
		INSERT INTO topic_comments (topic_id, user_id, content, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, topic_id)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()
		RETURNING id, topic_id, user_id, content, updated_at`

	n := &Note{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, topicID, userID, content).
		Scan(&n.ID, &n.TopicID, &n.UserID, &n.Content, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return n, nil
}

// ListWithAuthors returns every note on a topic with its writer, oldest first
func (r *Repository) ListWithAuthors(ctx context.Context, topicID int64) ([]*NoteWithAuthor, error) {
	query := `
		SELECT c.id, c.topic_id, c.user_id, c.content, c.updated_at, u.id, u.username
		FROM topic_comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.topic_id = $1
		ORDER BY c.id`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*NoteWithAuthor
	for rows.Next() {
		n := &NoteWithAuthor{}
		if err := rows.Scan(&n.ID, &n.TopicID, &n.UserID, &n.Content, &n.UpdatedAt, &n.User.ID, &n.User.Username); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}
