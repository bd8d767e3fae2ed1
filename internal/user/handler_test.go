package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/session"
)

type recordingSessions struct {
	logins  []session.Principal
	logouts int
}

func (s *recordingSessions) Login(_ context.Context, _ http.ResponseWriter, p session.Principal) error {
	s.logins = append(s.logins, p)
	return nil
}

func (s *recordingSessions) Logout(context.Context, http.ResponseWriter, *http.Request) error {
	s.logouts++
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *recordingSessions) {
	t.Helper()
	svc, _ := newTestService()
	sessions := &recordingSessions{}
	r := chi.NewRouter()
	NewHandler(svc, sessions, zap.NewNop()).RegisterRoutes(r)
	return r, sessions
}

func TestHandlerRegisterOpensSession(t *testing.T) {
	router, sessions := newTestRouter(t)

	rec := httptest.NewRecorder()
	body := `{"username":"alice","email":"alice@example.com","password":"password1"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(sessions.logins) != 1 || sessions.logins[0].Username != "alice" {
		t.Fatalf("expected one login for alice, got %+v", sessions.logins)
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, leaked := resp.Data["password_hash"]; leaked {
		t.Fatal("password hash leaked into response")
	}
}

func TestHandlerRegisterValidation(t *testing.T) {
	router, sessions := newTestRouter(t)

	rec := httptest.NewRecorder()
	body := `{"username":"al","email":"not-an-email","password":"short"}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(sessions.logins) != 0 {
		t.Fatal("no session expected on failed registration")
	}
}

func TestHandlerLoginWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"username":"bob","email":"bob@example.com","password":"password1"}`)))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"bob","password":"nope"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerMeRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
