package episodetopic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/podplanner/internal/database"
)

// Repository handles episode-topic association persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new association repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert attaches a topic to an episode or moves it when already attached.
// inserted reports whether a new association was created.
func (r *Repository) Upsert(ctx context.Context, episodeID, topicID int64, order int) (a *Association, inserted bool, err error) {
	query := `
		INSERT INTO episode_topics (episode_id, topic_id, "order")
		VALUES ($1, $2, $3)
		ON CONFLICT (episode_id, topic_id) DO UPDATE SET "order" = EXCLUDED."order"
		RETURNING id, episode_id, topic_id, "order", (xmax = 0)`

	a = &Association{}
	err = database.Conn(ctx, r.db).QueryRowContext(ctx, query, episodeID, topicID, order).
		Scan(&a.ID, &a.EpisodeID, &a.TopicID, &a.Order, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("failed to attach topic: %w", err)
	}
	return a, inserted, nil
}

// Delete removes an association; found is false when there was none
func (r *Repository) Delete(ctx context.Context, episodeID, topicID int64) (found bool, err error) {
	query := `DELETE FROM episode_topics WHERE episode_id = $1 AND topic_id = $2`

	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, episodeID, topicID)
	if err != nil {
		return false, fmt.Errorf("failed to detach topic: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to detach topic: %w", err)
	}
	return n > 0, nil
}

// ListForEpisode returns the topics of an episode in ascending order
func (r *Repository) ListForEpisode(ctx context.Context, episodeID int64) ([]*Entry, error) {
	query := `
		SELECT t.id, t.group_id, t.name, t.url, t.is_archived, t.is_deleted, t.created_at, et."order"
		FROM episode_topics et
		INNER JOIN topics t ON t.id = et.topic_id
		WHERE et.episode_id = $1
		ORDER BY et."order", et.id`

	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, query, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list episode topics: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Name, &e.URL, &e.IsArchived, &e.IsDeleted, &e.CreatedAt, &e.Order); err != nil {
			return nil, fmt.Errorf("failed to scan episode topic: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list episode topics: %w", err)
	}

	return entries, nil
}

// LockEpisode takes a row lock on the episode for the rest of the transaction.
// It returns false when the episode does not exist.
func (r *Repository) LockEpisode(ctx context.Context, episodeID int64) (bool, error) {
	var id int64
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id FROM episodes WHERE id = $1 FOR UPDATE`, episodeID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock episode: %w", err)
	}
	return true, nil
}

// TopicIDs returns the ids of every topic attached to an episode
func (r *Repository) TopicIDs(ctx context.Context, episodeID int64) ([]int64, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT topic_id FROM episode_topics WHERE episode_id = $1`, episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attached topics: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan topic id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetOrder moves an attached topic to a new position
func (r *Repository) SetOrder(ctx context.Context, episodeID, topicID int64, order int) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE episode_topics SET "order" = $3 WHERE episode_id = $1 AND topic_id = $2`,
		episodeID, topicID, order)
	if err != nil {
		return fmt.Errorf("failed to reorder topic: %w", err)
	}
	return nil
}
