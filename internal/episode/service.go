package episode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Common errors
var (
	ErrEpisodeNotFound = apperror.New(apperror.KindNotFound, "episode not found")
	ErrInvalidDate     = apperror.Validation("date must be YYYY-MM-DD or RFC 3339", map[string]string{"date": "must be YYYY-MM-DD or RFC 3339"})
	ErrInvalidStatus   = apperror.Validation("unknown episode status", map[string]string{"status": "must be one of draft, planned, done, deleted"})
	ErrInvalidRepeat   = apperror.Validation("repeat_pattern must be a JSON object", map[string]string{"repeat_pattern": "must be a JSON object or null"})
	ErrTitleRequired   = apperror.Validation("title is required", map[string]string{"title": "is required"})
)

// Store is the persistence the episode service needs
type Store interface {
	Create(ctx context.Context, groupID int64, title string, date time.Time, status Status, repeat json.RawMessage) (*Episode, error)
	GetByID(ctx context.Context, id int64) (*Episode, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Episode, error)
	Update(ctx context.Context, id int64, p *Patch) (*Episode, error)
	SetStatus(ctx context.Context, id int64, status Status) (*Episode, error)
}

// ActivityNotifier tells a group's members about changes made by actorID
type ActivityNotifier interface {
	GroupActivity(groupID, actorID int64, kind notification.ActivityKind, details string)
}

// Service handles episode business logic
type Service struct {
	repo     Store
	notifier ActivityNotifier
	log      *zap.Logger
}

// NewService creates a new episode service
func NewService(repo Store, notifier ActivityNotifier, log *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// Create schedules a new episode; the status defaults to draft
func (s *Service) Create(ctx context.Context, groupID, actorID int64, req *CreateEpisodeRequest) (*Episode, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	status := StatusDraft
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status = *req.Status
	}

	if err := validRepeat(req.RepeatPattern); err != nil {
		return nil, err
	}

	e, err := s.repo.Create(ctx, groupID, title, date, status, req.RepeatPattern)
	if err != nil {
		return nil, err
	}

	s.log.Info("episode created",
		zap.Int64("episode_id", e.ID),
		zap.Int64("group_id", groupID),
		zap.String("status", string(e.Status)),
	)

	s.notifier.GroupActivity(groupID, actorID, notification.ActivityNewEpisode,
		fmt.Sprintf("%q is planned for %s.", e.Title, formatDay(e.Date)))

	return e, nil
}

// GetByID retrieves an episode, deleted ones included
func (s *Service) GetByID(ctx context.Context, id int64) (*Episode, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEpisodeNotFound
	}
	return e, nil
}

// ListByGroup returns a group's episodes in date order, without deleted ones
func (s *Service) ListByGroup(ctx context.Context, groupID int64) ([]*Episode, error) {
	return s.repo.ListByGroup(ctx, groupID)
}

// Update applies a partial update. Any status may move to any other.
func (s *Service) Update(ctx context.Context, id, actorID int64, req *UpdateEpisodeRequest) (*Episode, error) {
	patch, err := toPatch(req)
	if err != nil {
		return nil, err
	}

	before, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEpisodeNotFound
	}

	if !e.Date.Equal(before.Date) {
		s.notifier.GroupActivity(e.GroupID, actorID, notification.ActivityScheduleChange,
			fmt.Sprintf("%q moved from %s to %s.", e.Title, formatDay(before.Date), formatDay(e.Date)))
	}

	return e, nil
}

// Delete marks an episode deleted. The row and its topic associations stay.
func (s *Service) Delete(ctx context.Context, id int64) error {
	e, err := s.repo.SetStatus(ctx, id, StatusDeleted)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrEpisodeNotFound
	}

	s.log.Info("episode deleted", zap.Int64("episode_id", id), zap.Int64("group_id", e.GroupID))
	return nil
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

func toPatch(req *UpdateEpisodeRequest) (*Patch, error) {
	p := &Patch{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		p.Title = &title
	}
	if req.Date != nil {
		d, err := ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		p.Date = &d
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		p.Status = req.Status
	}
	if req.RepeatPattern != nil {
		if err := validRepeat(req.RepeatPattern); err != nil {
			return nil, err
		}
		p.SetRepeat = true
		if !isJSONNull(req.RepeatPattern) {
			p.RepeatPattern = req.RepeatPattern
		}
	}

	return p, nil
}

// validRepeat accepts an absent pattern, JSON null, or a JSON object
func validRepeat(raw json.RawMessage) error {
	if len(raw) == 0 || isJSONNull(raw) {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ErrInvalidRepeat
	}
	return nil
}

func formatDay(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006")
}
