package topic

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Common errors
var (
	ErrTopicNotFound = apperror.New(apperror.KindNotFound, "topic not found")
	ErrTopicEmpty    = apperror.Validation("a topic needs a name or a url", map[string]string{"name": "name or url is required"})
	ErrInvalidURL    = apperror.Validation("url must be an absolute http(s) URL", map[string]string{"url": "must be an absolute http(s) URL"})
)

// Store is the persistence the topic service needs
type Store interface {
	Create(ctx context.Context, groupID int64, name, url *string) (*Topic, error)
	GetByID(ctx context.Context, id int64) (*Topic, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Topic, error)
	Update(ctx context.Context, id int64, req *UpdateTopicRequest) (*Topic, error)
}

// Service handles topic vault business logic
type Service struct {
	repo Store
	log  *zap.Logger
}

// NewService creates a new topic service
func NewService(repo Store, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create adds a topic to a group's vault. The name defaults to the url.
func (s *Service) Create(ctx context.Context, groupID int64, req *CreateTopicRequest) (*Topic, error) {
	name := trimmed(req.Name)
	link := trimmed(req.URL)

	if name == nil && link == nil {
		return nil, ErrTopicEmpty
	}
	if link != nil && !isHTTPURL(*link) {
		return nil, ErrInvalidURL
	}
	if name == nil {
		name = link
	}

	t, err := s.repo.Create(ctx, groupID, name, link)
	if err != nil {
		return nil, err
	}

	s.log.Debug("topic created", zap.Int64("topic_id", t.ID), zap.Int64("group_id", groupID))
	return t, nil
}

// GetByID retrieves a topic by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Topic, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

// ListByGroup returns every topic of a group, archived and deleted included
func (s *Service) ListByGroup(ctx context.Context, groupID int64) ([]*Topic, error) {
	return s.repo.ListByGroup(ctx, groupID)
}

// Update applies a partial update. The archive and delete flags are independent.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateTopicRequest) (*Topic, error) {
	if req.Name != nil {
		req.Name = trimmed(req.Name)
		if req.Name == nil {
			return nil, ErrTopicEmpty
		}
	}
	if req.URL != nil {
		req.URL = trimmed(req.URL)
		if req.URL == nil || !isHTTPURL(*req.URL) {
			return nil, ErrInvalidURL
		}
	}

	t, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
