package episodetopic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/internal/episode"
	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/internal/topic"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Common errors
var (
	ErrAssociationNotFound = apperror.New(apperror.KindNotFound, "topic is not attached to this episode")
	ErrTopicGroupMismatch  = apperror.Validation("topic belongs to another group", map[string]string{"topic_id": "must belong to the episode's group"})
	ErrDuplicateTopic      = apperror.Validation("topic listed more than once", map[string]string{"topic_ids": "must not contain duplicates"})
	ErrOrderMismatch       = apperror.Validation("order must list exactly the attached topics", map[string]string{"topic_ids": "must match the attached topics"})
)

// Store is the persistence the association service needs
type Store interface {
	Upsert(ctx context.Context, episodeID, topicID int64, order int) (*Association, bool, error)
	Delete(ctx context.Context, episodeID, topicID int64) (bool, error)
	ListForEpisode(ctx context.Context, episodeID int64) ([]*Entry, error)
	LockEpisode(ctx context.Context, episodeID int64) (bool, error)
	TopicIDs(ctx context.Context, episodeID int64) ([]int64, error)
	SetOrder(ctx context.Context, episodeID, topicID int64, order int) error
}

// EpisodeFinder looks up episodes
type EpisodeFinder interface {
	GetByID(ctx context.Context, id int64) (*episode.Episode, error)
}

// TopicFinder looks up topics
type TopicFinder interface {
	GetByID(ctx context.Context, id int64) (*topic.Topic, error)
}

// ActivityNotifier tells a group's members about changes made by actorID
type ActivityNotifier interface {
	GroupActivity(groupID, actorID int64, kind notification.ActivityKind, details string)
}

// Service handles the running order of topics on episodes
type Service struct {
	repo     Store
	episodes EpisodeFinder
	topics   TopicFinder
	tx       database.Transactor
	notifier ActivityNotifier
	log      *zap.Logger
}

// NewService creates a new association service
func NewService(repo Store, episodes EpisodeFinder, topics TopicFinder, tx database.Transactor, notifier ActivityNotifier, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		episodes: episodes,
		topics:   topics,
		tx:       tx,
		notifier: notifier,
		log:      log,
	}
}

// Episode resolves an episode so callers can authorize against its group
func (s *Service) Episode(ctx context.Context, episodeID int64) (*episode.Episode, error) {
	return s.episodes.GetByID(ctx, episodeID)
}

// Attach puts a topic on an episode at order. Attaching an already attached
// topic only moves it. The episode row is locked like in Reorder so the two
// never interleave.
func (s *Service) Attach(ctx context.Context, episodeID, topicID, actorID int64, order int) (*Association, error) {
	e, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	t, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if t.GroupID != e.GroupID {
		return nil, ErrTopicGroupMismatch
	}

	var (
		a        *Association
		inserted bool
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.LockEpisode(ctx, episodeID)
		if err != nil {
			return err
		}
		if !found {
			return episode.ErrEpisodeNotFound
		}

		a, inserted, err = s.repo.Upsert(ctx, episodeID, topicID, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	if inserted {
		s.notifier.GroupActivity(e.GroupID, actorID, notification.ActivityTopicAssigned,
			fmt.Sprintf("%q was added to %q.", t.Label(), e.Title))
	}

	return a, nil
}

// Detach removes a topic from an episode. The topic itself is kept.
func (s *Service) Detach(ctx context.Context, episodeID, topicID int64) error {
	found, err := s.repo.Delete(ctx, episodeID, topicID)
	if err != nil {
		return err
	}
	if !found {
		return ErrAssociationNotFound
	}
	return nil
}

// ListForEpisode returns an episode's topics in running order
func (s *Service) ListForEpisode(ctx context.Context, episodeID int64) ([]*Entry, error) {
	return s.repo.ListForEpisode(ctx, episodeID)
}

// Reorder rewrites the running order to match topicIDs, which must list every
// attached topic exactly once. Either every position changes or none does.
func (s *Service) Reorder(ctx context.Context, episodeID int64, topicIDs []int64) ([]*Entry, error) {
	seen := make(map[int64]struct{}, len(topicIDs))
	for _, id := range topicIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateTopic
		}
		seen[id] = struct{}{}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.LockEpisode(ctx, episodeID)
		if err != nil {
			return err
		}
		if !found {
			return episode.ErrEpisodeNotFound
		}

		attached, err := s.repo.TopicIDs(ctx, episodeID)
		if err != nil {
			return err
		}
		if len(attached) != len(seen) {
			return ErrOrderMismatch
		}
		for _, id := range attached {
			if _, ok := seen[id]; !ok {
				return ErrOrderMismatch
			}
		}

		for i, id := range topicIDs {
			if err := s.repo.SetOrder(ctx, episodeID, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("episode topics reordered", zap.Int64("episode_id", episodeID), zap.Int("count", len(topicIDs)))
	return s.repo.ListForEpisode(ctx, episodeID)
}
