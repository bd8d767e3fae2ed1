package invitation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/session"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Sessions opens a login session for a freshly registered invitee
type Sessions interface {
	Login(ctx context.Context, w http.ResponseWriter, p session.Principal) error
}

// Handler handles HTTP requests for invitations and invite codes
type Handler struct {
	service  *Service
	guard    group.Authorizer
	sessions Sessions
	log      *zap.Logger
}

// NewHandler creates a new invitation handler
func NewHandler(service *Service, guard group.Authorizer, sessions Sessions, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, sessions: sessions, log: log}
}

// InvitationRoutes returns the router mounted under /groups/{id}/invitations
func (h *Handler) InvitationRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateInvitation)
	return r
}

// InviteCodeRoutes returns the router mounted under /groups/{id}/invite-codes
func (h *Handler) InviteCodeRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateInviteCode)
	return r
}

// RegisterRoutes binds the invitee-facing endpoints onto r. Accepting an
// invitation works with or without a session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/invitations/{token}", h.Resolve)
	r.Post("/accept-invitation", h.Accept)
	r.With(middleware.RequireSession).Post("/join-group", h.JoinGroup)
}

// CreateInvitation handles POST /groups/{id}/invitations
// @Summary      Invite someone by email
// @Description  Mails a single-use join link valid for 7 days
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body CreateInvitationRequest true "Invitee"
// @Success      201 {object} response.APIResponse{data=InvitationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/invitations [post]
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	member, ok := h.authorizeManage(w, r)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	inv, _, err := h.service.CreateInvitation(r.Context(), member.GroupID, req.Email, member.UserID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, inv.ToResponse())
}

// CreateInviteCode handles POST /groups/{id}/invite-codes
// @Summary      Issue an invite code
// @Description  An 8-character single-use code valid for 7 days, optionally mailed
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body CreateInviteCodeRequest false "Optional recipient"
// @Success      201 {object} response.APIResponse{data=InviteCodeResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/invite-codes [post]
func (h *Handler) CreateInviteCode(w http.ResponseWriter, r *http.Request) {
	member, ok := h.authorizeManage(w, r)
	if !ok {
		return
	}

	var req CreateInviteCodeRequest
	if r.ContentLength != 0 {
		if err := request.Decode(r, &req); err != nil {
			response.Err(w, h.log, err)
			return
		}
	}

	ic, err := h.service.CreateInviteCode(r.Context(), member.GroupID, member.UserID, req.Email)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, ic.ToResponse())
}

// Resolve handles GET /invitations/{token}
// @Summary      Inspect an invitation
// @Description  Reports whether the invitee must log in or register first
// @Tags         invitations
// @Produce      json
// @Param        token path string true "Invitation token"
// @Success      200 {object} response.APIResponse{data=Resolution}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /invitations/{token} [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	res, err := h.service.ResolveInvitation(r.Context(), chi.URLParam(r, "token"), p)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, res)
}

// Accept handles POST /accept-invitation
// @Summary      Accept an invitation
// @Description  Anonymous invitees without an account send username and password to register
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request body AcceptInvitationRequest true "Token and optional account"
// @Success      200 {object} response.APIResponse{data=AcceptResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /accept-invitation [post]
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	reg, err := req.Registration()
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	p, _ := middleware.GetPrincipal(r.Context())
	if p != nil {
		reg = nil
	}

	result, err := h.service.AcceptInvitation(r.Context(), req.Token, p, reg)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	if result.NewAccount {
		if err := h.sessions.Login(r.Context(), w, result.Principal); err != nil {
			response.Err(w, h.log, err)
			return
		}
	}

	response.JSON(w, http.StatusOK, &AcceptResponse{
		Group:      result.Group.ToResponse(),
		NewAccount: result.NewAccount,
	})
}

// JoinGroup handles POST /join-group
// @Summary      Join a group with an invite code
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request body JoinGroupRequest true "Invite code"
// @Success      200 {object} response.APIResponse{data=group.GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /join-group [post]
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req JoinGroupRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	g, err := h.service.RedeemInviteCode(r.Context(), req.Code, userID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

func (h *Handler) authorizeManage(w http.ResponseWriter, r *http.Request) (*group.GroupMember, bool) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return nil, false
	}

	p, _ := middleware.GetPrincipal(r.Context())
	member, err := h.guard.Authorize(r.Context(), p, groupID, group.ActionManage)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, false
	}
	return member, true
}
