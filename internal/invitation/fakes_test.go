package invitation

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/notification"
	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/internal/user"
)

// world is an in-memory stand-in for every table the invitation flow touches.
// fakeTx snapshots it so failed transactions leave no trace.
type world struct {
	mu sync.Mutex

	invitations map[int64]Invitation
	codes       map[int64]InviteCode
	users       map[int64]user.User
	groups      map[int64]group.Group
	members     map[[2]int64]bool
	nextID      int64

	collisions int
	saved      *world
}

func newWorld() *world {
	return &world{
		invitations: make(map[int64]Invitation),
		codes:       make(map[int64]InviteCode),
		users:       make(map[int64]user.User),
		groups:      make(map[int64]group.Group),
		members:     make(map[[2]int64]bool),
	}
}

func (w *world) id() int64 {
	w.nextID++
	return w.nextID
}

func (w *world) snapshot() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved = &world{
		invitations: maps.Clone(w.invitations),
		codes:       maps.Clone(w.codes),
		users:       maps.Clone(w.users),
		members:     maps.Clone(w.members),
	}
}

func (w *world) restore() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invitations, w.codes = w.saved.invitations, w.saved.codes
	w.users, w.members = w.saved.users, w.saved.members
}

func (w *world) addUser(username, email string) *user.User {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := user.User{ID: w.id(), Username: username, Email: email, CreatedAt: time.Now()}
	w.users[u.ID] = u
	return &u
}

func (w *world) addGroup(name string, adminID int64) *group.Group {
	w.mu.Lock()
	defer w.mu.Unlock()
	g := group.Group{ID: w.id(), Name: name, CreatedAt: time.Now()}
	w.groups[g.ID] = g
	w.members[[2]int64{g.ID, adminID}] = true
	return &g
}

func (w *world) isMember(groupID, userID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.members[[2]int64{groupID, userID}]
}

// Store

func (w *world) CreateInvitation(_ context.Context, groupID int64, email, token string, invitedBy int64, expiresAt time.Time) (*Invitation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	inv := Invitation{
		Credential: Credential{ID: w.id(), GroupID: groupID, Secret: token, IssuedBy: invitedBy, ExpiresAt: expiresAt, CreatedAt: time.Now()},
		Email:      email,
	}
	w.invitations[inv.ID] = inv
	return &inv, nil
}

func (w *world) CreateInviteCode(_ context.Context, groupID int64, code string, createdBy int64, expiresAt time.Time) (*InviteCode, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.collisions > 0 {
		w.collisions--
		return nil, fmt.Errorf("failed to create invite code: %w", &pq.Error{Code: "23505", Constraint: "group_invite_codes_code_key"})
	}
	ic := InviteCode{Credential{ID: w.id(), GroupID: groupID, Secret: code, IssuedBy: createdBy, ExpiresAt: expiresAt, CreatedAt: time.Now()}}
	w.codes[ic.ID] = ic
	return &ic, nil
}

func (w *world) FindInvitation(_ context.Context, token string, now time.Time, _ bool) (*Invitation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, inv := range w.invitations {
		if inv.Secret == token && inv.Valid(now) {
			return &inv, nil
		}
	}
	return nil, nil
}

func (w *world) FindInviteCode(_ context.Context, code string, now time.Time, _ bool) (*InviteCode, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ic := range w.codes {
		if ic.Secret == code && ic.Valid(now) {
			return &ic, nil
		}
	}
	return nil, nil
}

func (w *world) MarkInvitationUsed(_ context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	inv := w.invitations[id]
	inv.Used = true
	w.invitations[id] = inv
	return nil
}

func (w *world) MarkInviteCodeUsed(_ context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ic := w.codes[id]
	ic.Used = true
	w.codes[id] = ic
	return nil
}

// Groups

type worldGroups struct{ *world }

func (g worldGroups) GetByID(_ context.Context, id int64) (*group.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	grp, ok := g.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return &grp, nil
}

func (g worldGroups) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	return g.isMember(groupID, userID), nil
}

func (g worldGroups) AddMember(_ context.Context, groupID int64, req *group.AddMemberRequest) (*group.GroupMember, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := [2]int64{groupID, req.UserID}
	if g.members[k] {
		return nil, group.ErrMemberAlreadyExists
	}
	g.members[k] = true
	return &group.GroupMember{ID: g.id(), GroupID: groupID, UserID: req.UserID, IsAdmin: req.IsAdmin}, nil
}

// Users

type worldUsers struct{ *world }

func (u worldUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &usr, nil
}

func (u worldUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.users {
		if usr.Email == user.NormalizeEmail(email) {
			return &usr, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (u worldUsers) Register(_ context.Context, req *user.RegisterRequest) (*user.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, usr := range u.users {
		if usr.Username == req.Username {
			return nil, user.ErrUsernameTaken
		}
	}
	usr := user.User{ID: u.id(), Username: req.Username, Email: user.NormalizeEmail(req.Email), PasswordHash: "hashed"}
	u.users[usr.ID] = usr
	return &usr, nil
}

type fakeTx struct{ w *world }

func (f fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.w.snapshot()
	if err := fn(ctx); err != nil {
		f.w.restore()
		return err
	}
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (m *recordingMailer) Dispatch(msg notification.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *recordingMailer) messages() []notification.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Message(nil), m.sent...)
}

type recordingSessions struct {
	logins []session.Principal
}

func (s *recordingSessions) Login(_ context.Context, w http.ResponseWriter, p session.Principal) error {
	s.logins = append(s.logins, p)
	http.SetCookie(w, &http.Cookie{Name: "podplanner_session", Value: "sid"})
	return nil
}

// sequence returns a token generator yielding secrets in order
func sequence(secrets ...string) func(int) (string, error) {
	var mu sync.Mutex
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(secrets) == 0 {
			return "", fmt.Errorf("no more secrets")
		}
		s := secrets[0]
		secrets = secrets[1:]
		return s, nil
	}
}

type fixture struct {
	world  *world
	mailer *recordingMailer
	svc    *Service
	clock  time.Time
	admin  *user.User
	group  *group.Group
}

func newFixture(secrets ...string) *fixture {
	w := newWorld()
	admin := w.addUser("host", "host@example.com")
	g := w.addGroup("Weekly Show", admin.ID)
	mailer := &recordingMailer{}

	f := &fixture{world: w, mailer: mailer, admin: admin, group: g, clock: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.svc = NewService(w, worldGroups{w}, worldUsers{w}, fakeTx{w}, mailer, "https://podplanner.test", zap.NewNop())
	f.svc.generate = sequence(secrets...)
	f.svc.now = func() time.Time { return f.clock }
	return f
}
