package main

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/fkhayef/podplanner/internal/notification"
)

func newTestContext(t *testing.T) (*commandContext, sqlmock.Sqlmock, time.Time) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := &commandContext{
		databaseURL: "postgres://test",
		open:        func(string) (*sql.DB, error) { return db, nil },
		now:         func() time.Time { return now },
	}
	return ctx, mock, now
}

func execute(t *testing.T, ctx *commandContext, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand(ctx)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("podctl %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestSweepDryRunOnlyCounts(t *testing.T) {
	ctx, mock, now := newTestContext(t)

	mock.ExpectBegin()
	counts := map[string]int64{"password_reset_tokens": 2, "group_invitations": 0, "group_invite_codes": 5}
	for _, table := range []string{"password_reset_tokens", "group_invitations", "group_invite_codes"} {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ` + table + ` WHERE used = true OR expires_at <= \$1`).
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(counts[table]))
	}
	mock.ExpectCommit()
	mock.ExpectClose()

	out := execute(t, ctx, "sweep", "--dry-run")

	for _, want := range []string{"Would remove", "password_reset_tokens", "group_invite_codes", "7 credentials would be removed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSweepDeletes(t *testing.T) {
	ctx, mock, now := newTestContext(t)

	mock.ExpectBegin()
	for _, table := range []string{"password_reset_tokens", "group_invitations", "group_invite_codes"} {
		mock.ExpectExec(`DELETE FROM ` + table + ` WHERE used = true OR expires_at <= \$1`).
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
	mock.ExpectClose()

	out := execute(t, ctx, "sweep")

	if !strings.Contains(out, "3 credentials removed") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateReportsCurrentSchema(t *testing.T) {
	ctx, mock, _ := newTestContext(t)

	mock.ExpectQuery(`information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT version FROM schema_version`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectClose()

	out := execute(t, ctx, "migrate")

	if !strings.Contains(out, "Schema up to date (version 1)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

type recordingSender struct {
	sent []notification.Message
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func TestMailTestSendsOneMessage(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	rec := &recordingSender{}
	ctx.sender = func() (notification.Sender, error) { return rec, nil }
	ctx.mailTimeout = time.Second

	out := execute(t, ctx, "mail-test", "host@example.com")

	if len(rec.sent) != 1 || rec.sent[0].To != "host@example.com" || rec.sent[0].Text == "" {
		t.Fatalf("unexpected messages %+v", rec.sent)
	}
	if !strings.Contains(out, "Test email sent to host@example.com") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMailTestRequiresRecipient(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	ctx.sender = func() (notification.Sender, error) { return &recordingSender{}, nil }

	cmd := newRootCommand(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"mail-test"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected an error without a recipient")
	}
}
