package user

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory Store
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]*User)}
}

func (m *memStore) Create(_ context.Context, username, email, hash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u := &User{ID: m.nextID, Username: username, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.PasswordHash = hash
	return nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store)
	svc.cost = bcrypt.MinCost
	return svc, store
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: " Alice@Example.com ", Password: "password1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash == "password1" {
		t.Fatal("password stored in clear")
	}

	if _, err := svc.Authenticate(ctx, "alice", "password1"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"same username", RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password1"}, ErrUsernameTaken},
		{"same email other case", RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "password1"}, ErrEmailAlreadyInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, &RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "oldpassword"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetPassword(ctx, u.ID, "newpassword"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob", "newpassword"); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob", "oldpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to fail, got %v", err)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
