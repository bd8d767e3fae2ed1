package invitation

import "time"

// Credential is a single-use secret that lets someone join a group
type Credential struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Secret    string    `json:"-"`
	IssuedBy  int64     `json:"issued_by"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the credential can still be redeemed at now
func (c *Credential) Valid(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}

// Invitation is a credential mailed to one address. Its secret is the token.
type Invitation struct {
	Credential
	Email string `json:"email"`
}

// InviteCode is a short credential shared by hand. Its secret is the code.
type InviteCode struct {
	Credential
}

// Resolution describes what an invitee must do before accepting
type Resolution struct {
	Email                string `json:"email"`
	GroupID              int64  `json:"group_id"`
	GroupName            string `json:"group_name"`
	RequiresRegistration bool   `json:"requiresRegistration"`
	RequiresLogin        bool   `json:"requiresLogin"`
}

// Registration carries the account details of an invitee without an account
type Registration struct {
	Username string
	Password string
}
