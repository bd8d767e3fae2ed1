package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRepositoryGetByEmailIgnoresCase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db)
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("Alice@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "hash", created))

	u, err := repo.GetByEmail(context.Background(), "Alice@Example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u == nil || u.ID != 1 || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRepositoryGetByIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE id").WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)

	u, err := NewRepository(db).GetByID(context.Background(), 42)
	if err != nil || u != nil {
		t.Fatalf("expected nil, nil for a missing user, got %+v, %v", u, err)
	}
}

func TestRepositoryUpdatePasswordMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(int64(5), "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewRepository(db).UpdatePassword(context.Background(), 5, "newhash"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
