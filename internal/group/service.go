package group

import (
	"context"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Common errors
var (
	ErrGroupNotFound       = apperror.New(apperror.KindNotFound, "group not found")
	ErrMemberNotFound      = apperror.New(apperror.KindNotFound, "member not found")
	ErrUserNotFound        = apperror.New(apperror.KindNotFound, "user not found")
	ErrMemberAlreadyExists = apperror.New(apperror.KindConflict, "user is already a member of this group")
)

// Store is the persistence the group service and guard need
type Store interface {
	Create(ctx context.Context, name string) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error)
	AddMember(ctx context.Context, groupID, userID int64, isAdmin bool) (*GroupMember, error)
	GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error)
	GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error)
	UpdateMemberRole(ctx context.Context, groupID, memberID int64, isAdmin bool) (*GroupMember, error)
}

// Service handles group business logic
type Service struct {
	repo Store
	tx   database.Transactor
	log  *zap.Logger
}

// NewService creates a new group service
func NewService(repo Store, tx database.Transactor, log *zap.Logger) *Service {
	return &Service{repo: repo, tx: tx, log: log}
}

// Create creates a new group and adds the creator as admin in one transaction
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	var group *Group

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		group, err = s.repo.Create(ctx, req.Name)
		if err != nil {
			return err
		}

		_, err = s.repo.AddMember(ctx, group.ID, creatorID, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("group created", zap.Int64("group_id", group.ID), zap.Int64("creator_id", creatorID))
	return group, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group
func (s *Service) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID int64, req *AddMemberRequest) (*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	member, err := s.repo.AddMember(ctx, groupID, req.UserID, req.IsAdmin)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, ErrMemberAlreadyExists
		case database.IsForeignKeyViolation(err):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return member, nil
}

// IsMember reports whether a user belongs to a group
func (s *Service) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	return s.repo.GetMembers(ctx, groupID)
}

// UpdateMemberRole promotes or demotes a member
func (s *Service) UpdateMemberRole(ctx context.Context, groupID, memberID int64, req *UpdateMemberRequest) (*GroupMember, error) {
	member, err := s.repo.UpdateMemberRole(ctx, groupID, memberID, *req.IsAdmin)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	s.log.Info("member role changed",
		zap.Int64("group_id", groupID),
		zap.Int64("member_id", memberID),
		zap.Bool("is_admin", member.IsAdmin),
	)
	return member, nil
}
