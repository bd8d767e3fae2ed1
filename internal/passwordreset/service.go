package passwordreset

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/internal/token"
	"github.com/fkhayef/podplanner/internal/user"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

const (
	// TokenBytes is the entropy of a reset token
	TokenBytes = 32
	// Lifetime is how long a reset link works
	Lifetime = time.Hour
)

// ErrInvalidOrExpiredToken is returned for unknown, used or expired tokens
var ErrInvalidOrExpiredToken = apperror.New(apperror.KindInvalidOrExpired, "invalid or expired reset token")

// Store is the persistence the reset service needs
type Store interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*ResetToken, error)
	FindValid(ctx context.Context, token string, now time.Time, lock bool) (*ResetToken, error)
	MarkUsed(ctx context.Context, id int64) error
}

// Users is the part of the user service password reset relies on
type Users interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	SetPassword(ctx context.Context, id int64, password string) error
}

// Mailer hands messages to the background dispatcher
type Mailer interface {
	Dispatch(msg notification.Message)
}

// Service handles the forgot-password flow
type Service struct {
	repo    Store
	users   Users
	tx      database.Transactor
	mailer  Mailer
	baseURL string
	log     *zap.Logger

	generate token.Generator
	now      func() time.Time
}

// NewService creates a new password reset service
func NewService(repo Store, users Users, tx database.Transactor, mailer Mailer, baseURL string, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		tx:       tx,
		mailer:   mailer,
		baseURL:  baseURL,
		log:      log,
		generate: token.Hex,
		now:      time.Now,
	}
}

// RequestReset mails a reset link when email belongs to an account.
// Unknown addresses succeed silently so accounts cannot be probed.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.log.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	secret, err := s.generate(TokenBytes)
	if err != nil {
		return err
	}

	if _, err := s.repo.Create(ctx, u.ID, secret, s.now().Add(Lifetime)); err != nil {
		return err
	}

	s.log.Info("password reset requested", zap.Int64("user_id", u.ID))

	link := s.baseURL + "/reset-password?" + url.Values{"token": {secret}}.Encode()
	s.mailer.Dispatch(notification.PasswordReset(u.Email, link))
	return nil
}

// CompleteReset sets a new password and burns the token
func (s *Service) CompleteReset(ctx context.Context, secret, password string) error {
	var userID int64

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.repo.FindValid(ctx, secret, s.now(), true)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrInvalidOrExpiredToken
		}

		if err := s.users.SetPassword(ctx, t.UserID, password); err != nil {
			return err
		}
		userID = t.UserID
		return s.repo.MarkUsed(ctx, t.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("password reset completed", zap.Int64("user_id", userID))
	return nil
}
