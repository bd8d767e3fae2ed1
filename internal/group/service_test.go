package group

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/session"
)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, fakeTx{store: store}, zap.NewNop()), store
}

func TestCreateMakesCreatorAdmin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	g, err := svc.Create(ctx, 1, &CreateGroupRequest{Name: "Weekly Show"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	members, err := svc.GetMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserID != 1 || !members[0].IsAdmin {
		t.Fatalf("expected creator as sole admin, got %+v", members)
	}

	guard := NewGuard(store)
	if _, err := guard.Authorize(ctx, &session.Principal{ID: 1}, g.ID, ActionManage); err != nil {
		t.Fatalf("creator should manage the group: %v", err)
	}
}

func TestCreateRollsBackWhenMembershipFails(t *testing.T) {
	svc, store := newTestService()
	store.failAddMember = errors.New("insert failed")

	if _, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Broken"}); err == nil {
		t.Fatal("expected error")
	}
	if len(store.groups) != 0 {
		t.Fatalf("expected group insert to be rolled back, have %d groups", len(store.groups))
	}
}

func TestListByUserIDInMembershipOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, 2, &CreateGroupRequest{Name: "First"})
	second, _ := svc.Create(ctx, 3, &CreateGroupRequest{Name: "Second"})
	if _, err := svc.AddMember(ctx, second.ID, &AddMemberRequest{UserID: 1}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := svc.AddMember(ctx, first.ID, &AddMemberRequest{UserID: 1}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	groups, total, err := svc.ListByUserID(ctx, 1, 1, 20)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if total != 2 || groups[0].ID != second.ID || groups[1].ID != first.ID {
		t.Fatalf("expected membership order [second first], got %+v (total %d)", groups, total)
	}
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, _ := svc.Create(ctx, 1, &CreateGroupRequest{Name: "Weekly Show"})
	if _, err := svc.AddMember(ctx, g.ID, &AddMemberRequest{UserID: 2}); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, err := svc.AddMember(ctx, g.ID, &AddMemberRequest{UserID: 2}); !errors.Is(err, ErrMemberAlreadyExists) {
		t.Fatalf("expected ErrMemberAlreadyExists, got %v", err)
	}
	if _, err := svc.AddMember(ctx, 999, &AddMemberRequest{UserID: 2}); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	g, _ := svc.Create(ctx, 1, &CreateGroupRequest{Name: "Weekly Show"})
	m, _ := svc.AddMember(ctx, g.ID, &AddMemberRequest{UserID: 2})

	promote := true
	updated, err := svc.UpdateMemberRole(ctx, g.ID, m.ID, &UpdateMemberRequest{IsAdmin: &promote})
	if err != nil {
		t.Fatalf("UpdateMemberRole: %v", err)
	}
	if !updated.IsAdmin {
		t.Fatal("expected member to be promoted")
	}

	if _, err := svc.UpdateMemberRole(ctx, g.ID, 999, &UpdateMemberRequest{IsAdmin: &promote}); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}
