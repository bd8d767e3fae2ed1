package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Sessions opens and closes login sessions
type Sessions interface {
	Login(ctx context.Context, w http.ResponseWriter, p session.Principal) error
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Handler handles HTTP requests for account operations
type Handler struct {
	service  *Service
	sessions Sessions
	log      *zap.Logger
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service, sessions Sessions, log *zap.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, log: log}
}

// RegisterRoutes binds the account endpoints onto r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(middleware.RequireSession).Get("/user", h.Me)
}

// PrincipalOf builds the session principal for u
func PrincipalOf(u *User) session.Principal {
	return session.Principal{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Register handles POST /register
// @Summary      Register a new account
// @Description  Create an account and open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account details"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	if err := h.sessions.Login(r.Context(), w, PrincipalOf(user)); err != nil {
		response.Err(w, h.log, err)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID))
	response.JSON(w, http.StatusCreated, user.ToResponse())
}

// Login handles POST /login
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	if err := h.sessions.Login(r.Context(), w, PrincipalOf(user)); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Logout handles POST /logout
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /user
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /user [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}
