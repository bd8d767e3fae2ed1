package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFindDropsStaleCredentials(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("used invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`FROM group_invitations c`).
			WithArgs("tok", now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "token", "invited_by", "expires_at", "used", "created_at", "email"}).
				AddRow(1, 1, "tok", 2, now.Add(time.Hour), true, now, "guest@example.com"))

		inv, err := NewRepository(db).FindInvitation(ctx, "tok", now, false)
		if err != nil {
			t.Fatalf("FindInvitation: %v", err)
		}
		if inv != nil {
			t.Fatalf("expected no invitation, got %+v", inv)
		}
	})

	t.Run("expired invite code", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`FROM group_invite_codes c`).
			WithArgs("CODE1234", now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "code", "created_by", "expires_at", "used", "created_at"}).
				AddRow(1, 1, "CODE1234", 2, now.Add(-time.Minute), false, now))

		ic, err := NewRepository(db).FindInviteCode(ctx, "CODE1234", now, false)
		if err != nil {
			t.Fatalf("FindInviteCode: %v", err)
		}
		if ic != nil {
			t.Fatalf("expected no invite code, got %+v", ic)
		}
	})

	t.Run("valid invitation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`FROM group_invitations c`).
			WithArgs("tok", now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "token", "invited_by", "expires_at", "used", "created_at", "email"}).
				AddRow(1, 1, "tok", 2, now.Add(time.Hour), false, now, "guest@example.com"))

		inv, err := NewRepository(db).FindInvitation(ctx, "tok", now, false)
		if err != nil {
			t.Fatalf("FindInvitation: %v", err)
		}
		if inv == nil || inv.Email != "guest@example.com" {
			t.Fatalf("unexpected invitation %+v", inv)
		}
	})
}
