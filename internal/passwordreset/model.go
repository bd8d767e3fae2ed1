package passwordreset

import "time"

// ResetToken lets the owner of an account choose a new password once
type ResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Valid reports whether the token can still be used at now
func (t *ResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
