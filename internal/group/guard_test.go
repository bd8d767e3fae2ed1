package group

import (
	"context"
	"errors"
	"testing"

	"github.com/fkhayef/podplanner/internal/session"
)

func TestGuardAuthorize(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	g, _ := store.Create(ctx, "Weekly Show")
	admin, _ := store.AddMember(ctx, g.ID, 1, true)
	member, _ := store.AddMember(ctx, g.ID, 2, false)
	var guard Authorizer = NewGuard(store)

	tests := []struct {
		name    string
		p       *session.Principal
		groupID int64
		action  Action
		want    error
	}{
		{"anonymous", nil, g.ID, ActionView, ErrUnauthenticated},
		{"unknown group", &session.Principal{ID: 1}, 999, ActionView, ErrGroupNotFound},
		{"outsider views", &session.Principal{ID: 3}, g.ID, ActionView, ErrNotMember},
		{"member views", &session.Principal{ID: 2}, g.ID, ActionView, nil},
		{"member manages", &session.Principal{ID: 2}, g.ID, ActionManage, ErrAdminRequired},
		{"admin manages", &session.Principal{ID: 1}, g.ID, ActionManage, nil},
		{"admin promotes member", &session.Principal{ID: 1}, g.ID, ActionChangeRole(member.ID), nil},
		{"admin demotes self", &session.Principal{ID: 1}, g.ID, ActionChangeRole(admin.ID), ErrSelfRoleChange},
		{"member promotes self", &session.Principal{ID: 2}, g.ID, ActionChangeRole(member.ID), ErrAdminRequired},
		{"unknown target", &session.Principal{ID: 1}, g.ID, ActionChangeRole(999), ErrMemberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guard.Authorize(ctx, tt.p, tt.groupID, tt.action)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if got == nil || got.UserID != tt.p.ID {
					t.Fatalf("expected requester membership, got %+v", got)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
