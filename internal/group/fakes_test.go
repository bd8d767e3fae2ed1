package group

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store with snapshot support for fake transactions
type memStore struct {
	mu        sync.Mutex
	groups    map[int64]*Group
	members   map[int64]*GroupMember
	usernames map[int64]string
	nextGroup int64
	nextMem   int64

	failAddMember error
	saved         *memStore
}

func newMemStore() *memStore {
	return &memStore{
		groups:    make(map[int64]*Group),
		members:   make(map[int64]*GroupMember),
		usernames: make(map[int64]string),
	}
}

func (m *memStore) snapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &memStore{
		groups:    maps.Clone(m.groups),
		members:   maps.Clone(m.members),
		nextGroup: m.nextGroup,
		nextMem:   m.nextMem,
	}
}

func (m *memStore) restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups, m.members = m.saved.groups, m.saved.members
	m.nextGroup, m.nextMem = m.saved.nextGroup, m.saved.nextMem
}

func (m *memStore) Create(_ context.Context, name string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGroup++
	g := &Group{ID: m.nextGroup, Name: name, CreatedAt: time.Now()}
	m.groups[g.ID] = g
	return g, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groups[id], nil
}

func (m *memStore) ListByUserID(_ context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, mem := range m.members {
		if mem.UserID == userID {
			ids = append(ids, mem.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*Group
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		out = append(out, m.groups[m.members[id].GroupID])
	}
	return out, len(ids), nil
}

func (m *memStore) Update(_ context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	return g, nil
}

func (m *memStore) AddMember(_ context.Context, groupID, userID int64, isAdmin bool) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAddMember != nil {
		return nil, m.failAddMember
	}
	for _, mem := range m.members {
		if mem.GroupID == groupID && mem.UserID == userID {
			return nil, errors.New("duplicate membership")
		}
	}
	m.nextMem++
	mem := &GroupMember{ID: m.nextMem, GroupID: groupID, UserID: userID, IsAdmin: isAdmin, JoinedAt: time.Now(), Username: m.usernames[userID]}
	m.members[mem.ID] = mem
	return mem, nil
}

func (m *memStore) GetMembers(_ context.Context, groupID int64) ([]*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*GroupMember
	for _, mem := range m.members {
		if mem.GroupID == groupID {
			out = append(out, mem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetMember(_ context.Context, groupID, userID int64) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.GroupID == groupID && mem.UserID == userID {
			return mem, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetMemberByID(_ context.Context, groupID, memberID int64) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberID]
	if !ok || mem.GroupID != groupID {
		return nil, nil
	}
	return mem, nil
}

func (m *memStore) UpdateMemberRole(_ context.Context, groupID, memberID int64, isAdmin bool) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[memberID]
	if !ok || mem.GroupID != groupID {
		return nil, nil
	}
	mem.IsAdmin = isAdmin
	return mem, nil
}

// fakeTx restores the store when fn fails
type fakeTx struct {
	store *memStore
}

func (f fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore()
		return err
	}
	return nil
}
