package note

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/internal/topic"
)

type noteKey struct{ userID, topicID int64 }

type memStore struct {
	mu     sync.Mutex
	nextID int64
	notes  map[noteKey]*Note
}

func newMemStore() *memStore {
	return &memStore{notes: make(map[noteKey]*Note)}
}

func (m *memStore) Upsert(_ context.Context, topicID, userID int64, content string) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := noteKey{userID, topicID}
	n, ok := m.notes[k]
	if !ok {
		m.nextID++
		n = &Note{ID: m.nextID, TopicID: topicID, UserID: userID}
		m.notes[k] = n
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	cp := *n
	return &cp, nil
}

func (m *memStore) ListWithAuthors(_ context.Context, topicID int64) ([]*NoteWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*NoteWithAuthor
	for id := int64(1); id <= m.nextID; id++ {
		for _, n := range m.notes {
			if n.ID == id && n.TopicID == topicID {
				out = append(out, &NoteWithAuthor{Note: *n, User: Author{ID: n.UserID, Username: "user"}})
			}
		}
	}
	return out, nil
}

type topics map[int64]*topic.Topic

func (t topics) GetByID(_ context.Context, id int64) (*topic.Topic, error) {
	if tp, ok := t[id]; ok {
		return tp, nil
	}
	return nil, topic.ErrTopicNotFound
}

func TestUpsertOverwritesPerUser(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, topics{}, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, 1, 10, "first take")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := svc.Upsert(ctx, 1, 10, "second take")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.ID != second.ID || second.Content != "second take" {
		t.Fatalf("expected overwrite of note %d, got %+v", first.ID, second)
	}

	if _, err := svc.Upsert(ctx, 1, 11, "another member"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	notes, _ := svc.ListWithAuthors(ctx, 1)
	if len(notes) != 2 {
		t.Fatalf("expected one note per member, got %d", len(notes))
	}

	if _, err := svc.Upsert(ctx, 1, 10, "   "); !errors.Is(err, ErrEmptyNote) {
		t.Fatalf("expected ErrEmptyNote, got %v", err)
	}
}

func TestRepositoryUpsertUsesConflictClause(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`ON CONFLICT \(user_id, topic_id\)\s+DO UPDATE SET content = EXCLUDED.content`).
		WithArgs(int64(1), int64(10), "hello").
		WillReturnRows(sqlmock.NewRows([]string{"id", "topic_id", "user_id", "content", "updated_at"}).AddRow(4, 1, 10, "hello", now))

	n, err := NewRepository(db).Upsert(context.Background(), 1, 10, "hello")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n.ID != 4 || n.Content != "hello" {
		t.Fatalf("unexpected note %+v", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRepositoryListJoinsAuthors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INNER JOIN users u ON u.id = c.user_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "topic_id", "user_id", "content", "updated_at", "id", "username"}).
			AddRow(4, 1, 10, "hello", now, 10, "alice"))

	notes, err := NewRepository(db).ListWithAuthors(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListWithAuthors: %v", err)
	}
	if len(notes) != 1 || notes[0].User.Username != "alice" {
		t.Fatalf("unexpected notes %+v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

type allowGroup struct{ groupID int64 }

func (a allowGroup) Authorize(_ context.Context, p *session.Principal, groupID int64, _ group.Action) (*group.GroupMember, error) {
	if groupID != a.groupID {
		return nil, group.ErrNotMember
	}
	return &group.GroupMember{GroupID: groupID, UserID: p.ID}, nil
}

func TestHandlerWritesAsCaller(t *testing.T) {
	label := "AI news"
	store := newMemStore()
	svc := NewService(store, topics{
		1: {ID: 1, GroupID: 1, Name: &label},
		2: {ID: 2, GroupID: 2, Name: &label},
	}, zap.NewNop())

	router := chi.NewRouter()
	router.Mount("/topics/{id}/comments", NewHandler(svc, allowGroup{groupID: 1}, zap.NewNop()).Routes())

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(session.WithPrincipal(req.Context(), &session.Principal{ID: 10}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/topics/1/comments", `{"content":"worth a segment"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"user_id":10`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodGet, "/topics/1/comments", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"worth a segment"`) {
		t.Fatalf("unexpected listing %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(http.MethodPost, "/topics/1/comments", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing content, got %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/topics/2/comments", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a foreign group, got %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/topics/3/comments", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown topic, got %d", rec.Code)
	}
}
