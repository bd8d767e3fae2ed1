package invitation

import (
	"time"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/pkg/apperror"
)

// CreateInvitationRequest represents the request to invite someone by email
type CreateInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateInviteCodeRequest represents the request to issue an invite code.
// When email is set the code is also mailed to it.
type CreateInviteCodeRequest struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// AcceptInvitationRequest represents the request to accept an invitation.
// Username and password are only needed when the invitee has no account.
type AcceptInvitationRequest struct {
	Token    string `json:"token" validate:"required"`
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// Registration returns the account details of the request, or nil when none
// were sent. Username and password come as a pair.
func (r *AcceptInvitationRequest) Registration() (*Registration, error) {
	switch {
	case r.Username == "" && r.Password == "":
		return nil, nil
	case r.Username == "":
		return nil, apperror.Validation("Validation failed", map[string]string{"username": "is required"})
	case r.Password == "":
		return nil, apperror.Validation("Validation failed", map[string]string{"password": "is required"})
	}
	return &Registration{Username: r.Username, Password: r.Password}, nil
}

// JoinGroupRequest represents the request to redeem an invite code
type JoinGroupRequest struct {
	Code string `json:"code" validate:"required"`
}

// InvitationResponse represents a freshly created invitation
type InvitationResponse struct {
	ID        int64  `json:"id"`
	GroupID   int64  `json:"group_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

// InviteCodeResponse represents a freshly created invite code
type InviteCodeResponse struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}

// AcceptResponse represents the outcome of joining a group
type AcceptResponse struct {
	Group      *group.GroupResponse `json:"group"`
	NewAccount bool                 `json:"new_account"`
}

// ToResponse converts an Invitation to an InvitationResponse DTO
func (i *Invitation) ToResponse() *InvitationResponse {
	return &InvitationResponse{
		ID:        i.ID,
		GroupID:   i.GroupID,
		Email:     i.Email,
		ExpiresAt: i.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// ToResponse converts an InviteCode to an InviteCodeResponse DTO
func (c *InviteCode) ToResponse() *InviteCodeResponse {
	return &InviteCodeResponse{
		Code:      c.Secret,
		ExpiresAt: c.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
