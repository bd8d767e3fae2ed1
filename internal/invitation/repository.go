package invitation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fkhayef/podplanner/internal/database"
)

// table describes where one credential variant lives
type table struct {
	name   string
	secret string
	issuer string
	extra  []string
}

var (
	invitationTable = table{name: "group_invitations", secret: "token", issuer: "invited_by", extra: []string{"email"}}
	inviteCodeTable = table{name: "group_invite_codes", secret: "code", issuer: "created_by"}
)

func (t table) columns(prefix string) string {
	cols := append([]string{"id", "group_id", t.secret, t.issuer, "expires_at", "used", "created_at"}, t.extra...)
	for i, col := range cols {
		cols[i] = prefix + col
	}
	return strings.Join(cols, ", ")
}

// findValid selects a redeemable credential by its secret.
// With lock the row stays locked until the surrounding transaction ends.
func (t table) findValid(lock bool) string {
	query := `SELECT ` + t.columns("c.") + `
		FROM ` + t.name + ` c
		WHERE c.` + t.secret + ` = $1 AND c.used = false AND c.expires_at > $2`
	if lock {
		query += ` FOR UPDATE OF c`
	}
	return query
}

// Repository handles invitation and invite code persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new invitation repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func credentialDest(c *Credential) []any {
	return []any{&c.ID, &c.GroupID, &c.Secret, &c.IssuedBy, &c.ExpiresAt, &c.Used, &c.CreatedAt}
}

// CreateInvitation stores an emailed invitation
func (r *Repository) CreateInvitation(ctx context.Context, groupID int64, email, token string, invitedBy int64, expiresAt time.Time) (*Invitation, error) {
	query := `
		INSERT INTO group_invitations (group_id, email, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + invitationTable.columns("")

	inv := &Invitation{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, groupID, email, token, invitedBy, expiresAt).
		Scan(append(credentialDest(&inv.Credential), &inv.Email)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

// CreateInviteCode stores an invite code
func (r *Repository) CreateInviteCode(ctx context.Context, groupID int64, code string, createdBy int64, expiresAt time.Time) (*InviteCode, error) {
	query := `
		INSERT INTO group_invite_codes (group_id, code, created_by, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + inviteCodeTable.columns("")

	ic := &InviteCode{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, query, groupID, code, createdBy, expiresAt).
		Scan(credentialDest(&ic.Credential)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite code: %w", err)
	}
	return ic, nil
}

// FindInvitation returns the invitation for token when it is still valid at now
func (r *Repository) FindInvitation(ctx context.Context, token string, now time.Time, lock bool) (*Invitation, error) {
	inv := &Invitation{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, invitationTable.findValid(lock), token, now).
		Scan(append(credentialDest(&inv.Credential), &inv.Email)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	if !inv.Valid(now) {
		return nil, nil
	}
	return inv, nil
}

// FindInviteCode returns the invite code when it is still valid at now
func (r *Repository) FindInviteCode(ctx context.Context, code string, now time.Time, lock bool) (*InviteCode, error) {
	ic := &InviteCode{}
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, inviteCodeTable.findValid(lock), code, now).
		Scan(credentialDest(&ic.Credential)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find invite code: %w", err)
	}
	if !ic.Valid(now) {
		return nil, nil
	}
	return ic, nil
}

// MarkInvitationUsed flips the used flag of an invitation
func (r *Repository) MarkInvitationUsed(ctx context.Context, id int64) error {
	return r.markUsed(ctx, invitationTable, id)
}

// MarkInviteCodeUsed flips the used flag of an invite code
func (r *Repository) MarkInviteCodeUsed(ctx context.Context, id int64) error {
	return r.markUsed(ctx, inviteCodeTable, id)
}

func (r *Repository) markUsed(ctx context.Context, t table, id int64) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE `+t.name+` SET used = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark %s used: %w", t.name, err)
	}
	return nil
}
