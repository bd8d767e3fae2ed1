package invitation

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/internal/token"
	"github.com/fkhayef/podplanner/internal/user"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

const (
	// TokenBytes is the entropy of an emailed invitation token
	TokenBytes = 32
	// CodeBytes is the entropy of an invite code (8 hex characters)
	CodeBytes = 4
	// Lifetime is how long invitations and codes stay valid
	Lifetime = 7 * 24 * time.Hour

	codeAttempts = 3
)

// Common errors
var (
	ErrInvitationNotFound   = apperror.New(apperror.KindNotFound, "invitation not found or expired")
	ErrInvalidInvitation    = apperror.New(apperror.KindInvalidOrExpired, "invalid or expired invitation")
	ErrInvalidInviteCode    = apperror.New(apperror.KindInvalidOrExpired, "invalid or expired invite code")
	ErrAlreadyMember        = apperror.New(apperror.KindConflict, "you are already a member of this group")
	ErrLoginRequired        = apperror.New(apperror.KindLoginRequired, "log in with the invited email to accept this invitation")
	ErrRegistrationRequired = apperror.New(apperror.KindRegistrationRequired, "create an account to accept this invitation")
	ErrEmailMismatch        = apperror.New(apperror.KindEmailMismatch, "this invitation was sent to a different email address")
)

// Store is the persistence the invitation service needs
type Store interface {
	CreateInvitation(ctx context.Context, groupID int64, email, token string, invitedBy int64, expiresAt time.Time) (*Invitation, error)
	CreateInviteCode(ctx context.Context, groupID int64, code string, createdBy int64, expiresAt time.Time) (*InviteCode, error)
	FindInvitation(ctx context.Context, token string, now time.Time, lock bool) (*Invitation, error)
	FindInviteCode(ctx context.Context, code string, now time.Time, lock bool) (*InviteCode, error)
	MarkInvitationUsed(ctx context.Context, id int64) error
	MarkInviteCodeUsed(ctx context.Context, id int64) error
}

// Groups is the part of the group service invitations rely on
type Groups interface {
	GetByID(ctx context.Context, id int64) (*group.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	AddMember(ctx context.Context, groupID int64, req *group.AddMemberRequest) (*group.GroupMember, error)
}

// Users is the part of the user service invitations rely on
type Users interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
}

// Mailer hands messages to the background dispatcher
type Mailer interface {
	Dispatch(msg notification.Message)
}

// AcceptResult is the outcome of accepting an invitation
type AcceptResult struct {
	Group      *group.Group
	Principal  session.Principal
	NewAccount bool
}

// Service handles invitations and invite codes
type Service struct {
	repo    Store
	groups  Groups
	users   Users
	tx      database.Transactor
	mailer  Mailer
	baseURL string
	log     *zap.Logger

	generate token.Generator
	now      func() time.Time
}

// NewService creates a new invitation service. Links in emails point at baseURL.
func NewService(repo Store, groups Groups, users Users, tx database.Transactor, mailer Mailer, baseURL string, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		groups:   groups,
		users:    users,
		tx:       tx,
		mailer:   mailer,
		baseURL:  baseURL,
		log:      log,
		generate: token.Hex,
		now:      time.Now,
	}
}

// CreateInvitation records an invitation for email and mails the join link.
// The token is returned so callers can show or log it.
func (s *Service) CreateInvitation(ctx context.Context, groupID int64, email string, invitedBy int64) (*Invitation, string, error) {
	email = user.NormalizeEmail(email)

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	inviter, err := s.users.GetByID(ctx, invitedBy)
	if err != nil {
		return nil, "", err
	}

	secret, err := s.generate(TokenBytes)
	if err != nil {
		return nil, "", err
	}

	inv, err := s.repo.CreateInvitation(ctx, groupID, email, secret, invitedBy, s.now().Add(Lifetime))
	if err != nil {
		return nil, "", err
	}

	s.log.Info("invitation created",
		zap.Int64("group_id", groupID),
		zap.Int64("invitation_id", inv.ID),
		zap.Int64("invited_by", invitedBy),
	)

	s.mailer.Dispatch(notification.GroupInvitation(email, g.Name, inviter.Username, "", s.joinLink("token", secret)))

	return inv, secret, nil
}

// ResolveInvitation tells the invitee what is needed before accepting.
// p is nil for anonymous callers. A caller signed in as someone else is told
// the same as an anonymous one.
func (s *Service) ResolveInvitation(ctx context.Context, secret string, p *session.Principal) (*Resolution, error) {
	inv, err := s.repo.FindInvitation(ctx, secret, s.now(), false)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}

	g, err := s.groups.GetByID(ctx, inv.GroupID)
	if err != nil {
		return nil, err
	}

	exists, err := s.accountExists(ctx, inv.Email)
	if err != nil {
		return nil, err
	}
	signedIn := p != nil && user.NormalizeEmail(p.Email) == inv.Email

	return &Resolution{
		Email:                inv.Email,
		GroupID:              g.ID,
		GroupName:            g.Name,
		RequiresRegistration: !exists,
		RequiresLogin:        exists && !signedIn,
	}, nil
}

// AcceptInvitation joins the invitee to the group. An anonymous invitee with
// no account must supply reg; the account is then created as part of the
// same transaction.
func (s *Service) AcceptInvitation(ctx context.Context, secret string, p *session.Principal, reg *Registration) (*AcceptResult, error) {
	result := &AcceptResult{}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.FindInvitation(ctx, secret, s.now(), true)
		if err != nil {
			return err
		}
		if inv == nil {
			return ErrInvalidInvitation
		}

		if p == nil {
			exists, err := s.accountExists(ctx, inv.Email)
			if err != nil {
				return err
			}
			if exists {
				return ErrLoginRequired.WithDetail("email", inv.Email)
			}
			if reg == nil {
				return ErrRegistrationRequired.WithDetail("email", inv.Email)
			}

			u, err := s.users.Register(ctx, &user.RegisterRequest{
				Username: reg.Username,
				Email:    inv.Email,
				Password: reg.Password,
			})
			if err != nil {
				return err
			}
			result.Principal = user.PrincipalOf(u)
			result.NewAccount = true
		} else {
			if user.NormalizeEmail(p.Email) != inv.Email {
				return ErrEmailMismatch.WithDetail("email", inv.Email)
			}
			result.Principal = *p
		}

		if err := s.join(ctx, inv.GroupID, result.Principal.ID); err != nil {
			return err
		}
		if err := s.repo.MarkInvitationUsed(ctx, inv.ID); err != nil {
			return err
		}

		result.Group, err = s.groups.GetByID(ctx, inv.GroupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invitation accepted",
		zap.Int64("group_id", result.Group.ID),
		zap.Int64("user_id", result.Principal.ID),
		zap.Bool("new_account", result.NewAccount),
	)
	return result, nil
}

// CreateInviteCode issues a short code for groupID. When email is not empty
// the code and a join link are mailed to it.
func (s *Service) CreateInviteCode(ctx context.Context, groupID, createdBy int64, email string) (*InviteCode, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var ic *InviteCode
	for attempt := 1; ; attempt++ {
		code, err := s.generate(CodeBytes)
		if err != nil {
			return nil, err
		}

		ic, err = s.repo.CreateInviteCode(ctx, groupID, code, createdBy, s.now().Add(Lifetime))
		if err == nil {
			break
		}
		if !database.IsUniqueViolation(err) || attempt == codeAttempts {
			return nil, err
		}
		s.log.Warn("invite code collision, retrying", zap.Int("attempt", attempt))
	}

	s.log.Info("invite code created", zap.Int64("group_id", groupID), zap.Int64("created_by", createdBy))

	if email = user.NormalizeEmail(email); email != "" {
		inviter, err := s.users.GetByID(ctx, createdBy)
		if err != nil {
			return nil, err
		}
		s.mailer.Dispatch(notification.GroupInvitation(email, g.Name, inviter.Username, ic.Secret, s.joinLink("code", ic.Secret)))
	}

	return ic, nil
}

// RedeemInviteCode joins userID to the code's group and burns the code
func (s *Service) RedeemInviteCode(ctx context.Context, code string, userID int64) (*group.Group, error) {
	var g *group.Group

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ic, err := s.repo.FindInviteCode(ctx, code, s.now(), true)
		if err != nil {
			return err
		}
		if ic == nil {
			return ErrInvalidInviteCode
		}

		if err := s.join(ctx, ic.GroupID, userID); err != nil {
			return err
		}
		if err := s.repo.MarkInviteCodeUsed(ctx, ic.ID); err != nil {
			return err
		}

		g, err = s.groups.GetByID(ctx, ic.GroupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invite code redeemed", zap.Int64("group_id", g.ID), zap.Int64("user_id", userID))
	return g, nil
}

// join adds userID as a regular member of groupID
func (s *Service) join(ctx context.Context, groupID, userID int64) error {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}

	_, err = s.groups.AddMember(ctx, groupID, &group.AddMemberRequest{UserID: userID, IsAdmin: false})
	if errors.Is(err, group.ErrMemberAlreadyExists) {
		return ErrAlreadyMember
	}
	return err
}

func (s *Service) accountExists(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, user.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) joinLink(param, secret string) string {
	return s.baseURL + "/join-group?" + url.Values{param: {secret}}.Encode()
}
