package note

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/topic"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// ErrEmptyNote is returned for whitespace-only content
var ErrEmptyNote = apperror.Validation("note content is required", map[string]string{"content": "is required"})

// Store is the persistence the note service needs
type Store interface {
	Upsert(ctx context.Context, topicID, userID int64, content string) (*Note, error)
	ListWithAuthors(ctx context.Context, topicID int64) ([]*NoteWithAuthor, error)
}

// TopicFinder looks up topics
type TopicFinder interface {
	GetByID(ctx context.Context, id int64) (*topic.Topic, error)
}

// Service handles topic notes
type Service struct {
	repo   Store
	topics TopicFinder
	log    *zap.Logger
}

// NewService creates a new note service
func NewService(repo Store, topics TopicFinder, log *zap.Logger) *Service {
	return &Service{repo: repo, topics: topics, log: log}
}

// Topic resolves a topic so callers can authorize against its group
func (s *Service) Topic(ctx context.Context, topicID int64) (*topic.Topic, error) {
	return s.topics.GetByID(ctx, topicID)
}

// Upsert writes userID's note on a topic, replacing the previous one
func (s *Service) Upsert(ctx context.Context, topicID, userID int64, content string) (*Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyNote
	}

	n, err := s.repo.Upsert(ctx, topicID, userID, content)
	if err != nil {
		return nil, err
	}

	s.log.Debug("note saved", zap.Int64("topic_id", topicID), zap.Int64("user_id", userID))
	return n, nil
}

// ListWithAuthors returns the notes on a topic with their writers
func (s *Service) ListWithAuthors(ctx context.Context, topicID int64) ([]*NoteWithAuthor, error) {
	return s.repo.ListWithAuthors(ctx, topicID)
}
