package group

import (
	"context"

	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Authorization errors
var (
	ErrUnauthenticated = apperror.New(apperror.KindUnauthorized, "authentication required")
	ErrNotMember       = apperror.New(apperror.KindForbidden, "you are not a member of this group")
	ErrAdminRequired   = apperror.New(apperror.KindForbidden, "admin privileges required")
	ErrSelfRoleChange  = apperror.New(apperror.KindForbidden, "you cannot change your own role")
)

// Action is something a principal wants to do inside a group
type Action struct {
	name         string
	adminOnly    bool
	targetMember int64
}

var (
	// ActionView is open to every member
	ActionView = Action{name: "view"}
	// ActionManage covers group settings, members and invitations
	ActionManage = Action{name: "manage", adminOnly: true}
)

// ActionChangeRole changes the role of another member
func ActionChangeRole(memberID int64) Action {
	return Action{name: "change_role", adminOnly: true, targetMember: memberID}
}

func (a Action) String() string {
	return a.name
}

// MembershipReader is the read side of Store the guard depends on
type MembershipReader interface {
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error)
	GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error)
}

// Authorizer is what feature handlers depend on to gate group-scoped routes
type Authorizer interface {
	Authorize(ctx context.Context, p *session.Principal, groupID int64, action Action) (*GroupMember, error)
}

// Guard decides whether a principal may act on a group
type Guard struct {
	repo MembershipReader
}

var _ Authorizer = (*Guard)(nil)

// NewGuard creates a new authorization guard
func NewGuard(repo MembershipReader) *Guard {
	return &Guard{repo: repo}
}

// Authorize returns the principal's membership when action is allowed on groupID
func (g *Guard) Authorize(ctx context.Context, p *session.Principal, groupID int64, action Action) (*GroupMember, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}

	group, err := g.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	member, err := g.repo.GetMember(ctx, groupID, p.ID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}

	if action.adminOnly && !member.IsAdmin {
		return nil, ErrAdminRequired
	}

	if action.targetMember != 0 {
		target, err := g.repo.GetMemberByID(ctx, groupID, action.targetMember)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, ErrMemberNotFound
		}
		if target.UserID == p.ID {
			return nil, ErrSelfRoleChange
		}
	}

	return member, nil
}
