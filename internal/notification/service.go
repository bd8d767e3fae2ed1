package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
)

// GroupDirectory resolves a group and its members
type GroupDirectory interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	GetMembers(ctx context.Context, groupID int64) ([]*group.GroupMember, error)
}

// Service tells group members about activity in their group
type Service struct {
	groups     GroupDirectory
	dispatcher *Dispatcher
	log        *zap.Logger
}

// NewService creates a new notification service
func NewService(groups GroupDirectory, dispatcher *Dispatcher, log *zap.Logger) *Service {
	return &Service{groups: groups, dispatcher: dispatcher, log: log}
}

// GroupActivity emails every member of groupID except the actor.
// It returns immediately; lookups and delivery happen in the background.
func (s *Service) GroupActivity(groupID, actorID int64, kind ActivityKind, details string) {
	s.dispatcher.Go(fmt.Sprintf("%s group=%d", kind, groupID), func(ctx context.Context) error {
		g, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to load group: %w", err)
		}

		members, err := s.groups.GetMembers(ctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}

		recipients := 0
		for _, m := range members {
			if m.UserID == actorID || m.Email == "" {
				continue
			}
			s.dispatcher.Dispatch(GroupActivity(m.Email, g.Name, kind, details))
			recipients++
		}

		s.log.Debug("group activity dispatched",
			zap.Int64("group_id", groupID),
			zap.String("kind", string(kind)),
			zap.Int("recipients", recipients),
		)
		return nil
	})
}
