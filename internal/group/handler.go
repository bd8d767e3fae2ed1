package group

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
	guard   *Guard
	log     *zap.Logger
}

// NewHandler creates a new group handler
func NewHandler(service *Service, guard *Guard, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, log: log}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)

	// Member management
	r.Get("/{id}/members", h.GetMembers)
	r.Post("/{id}/members", h.AddMember)
	r.Patch("/{id}/members/{memberId}", h.UpdateMember)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group and add creator as admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, _ := middleware.GetUserID(r.Context())

	var req CreateGroupRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	group, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a group with all its members
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, ActionView)
	if !ok {
		return
	}

	group, members, err := h.service.GetByIDWithMembers(r.Context(), id)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	groupResp := group.ToResponse()
	groupResp.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		groupResp.Members[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, groupResp)
}

// List handles GET /groups
// @Summary      List my groups
// @Description  Get a paginated list of groups for the current user
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	groups, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		groupResponses[i] = group.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, groupResponses, meta)
}

// Update handles PATCH /groups/{id}
// @Summary      Rename a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r, ActionManage)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	group, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add member to group
// @Description  Add an existing user to the group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.authorize(w, r, ActionManage)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	member, err := h.service.AddMember(r.Context(), groupID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, member.ToResponse())
}

// GetMembers handles GET /groups/{id}/members
// @Summary      List group members
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members [get]
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := h.authorize(w, r, ActionView)
	if !ok {
		return
	}

	members, err := h.service.GetMembers(r.Context(), groupID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// UpdateMember handles PATCH /groups/{id}/members/{memberId}
// @Summary      Change a member's role
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        memberId path int true "Membership ID"
// @Param        request body UpdateMemberRequest true "New role"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId} [patch]
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := request.PathID(r, "memberId")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	groupID, ok := h.authorize(w, r, ActionChangeRole(memberID))
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	member, err := h.service.UpdateMemberRole(r.Context(), groupID, memberID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action Action) (int64, bool) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return 0, false
	}

	p, _ := middleware.GetPrincipal(r.Context())
	if _, err := h.guard.Authorize(r.Context(), p, groupID, action); err != nil {
		response.Err(w, h.log, err)
		return 0, false
	}
	return groupID, true
}
