package episode

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for episode operations
type Handler struct {
	service *Service
	guard   group.Authorizer
	log     *zap.Logger
}

// NewHandler creates a new episode handler
func NewHandler(service *Service, guard group.Authorizer, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, log: log}
}

// GroupRoutes returns the router mounted under /groups/{id}/episodes
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	return r
}

// Routes returns the router for /episodes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /groups/{id}/episodes
// @Summary      Plan an episode
// @Description  Status defaults to draft; date accepts YYYY-MM-DD or RFC 3339
// @Tags         episodes
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body CreateEpisodeRequest true "Episode"
// @Success      201 {object} response.APIResponse{data=EpisodeResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/episodes [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}
	member, ok := h.authorize(w, r, groupID)
	if !ok {
		return
	}

	var req CreateEpisodeRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	e, err := h.service.Create(r.Context(), groupID, member.UserID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// List handles GET /groups/{id}/episodes
// @Summary      List episodes
// @Description  Episodes of a group in date order, deleted ones excluded
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]EpisodeResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/episodes [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}
	if _, ok := h.authorize(w, r, groupID); !ok {
		return
	}

	episodes, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	out := make([]*EpisodeResponse, len(episodes))
	for i, e := range episodes {
		out[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, out)
}

// GetByID handles GET /episodes/{id}
// @Summary      Get an episode
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} response.APIResponse{data=EpisodeResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Update handles PATCH /episodes/{id}
// @Summary      Update an episode
// @Description  Partial update; repeat_pattern null clears the pattern
// @Tags         episodes
// @Accept       json
// @Produce      json
// @Param        id path int true "Episode ID"
// @Param        request body UpdateEpisodeRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=EpisodeResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	e, member, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	var req UpdateEpisodeRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	updated, err := h.service.Update(r.Context(), e.ID, member.UserID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, updated.ToResponse())
}

// Delete handles DELETE /episodes/{id}
// @Summary      Delete an episode
// @Description  Marks the episode deleted; its topic associations are kept
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), e.ID); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Episode deleted"})
}

// loadEpisode resolves the {id} episode and checks the caller belongs to its group
func (h *Handler) loadEpisode(w http.ResponseWriter, r *http.Request) (*Episode, *group.GroupMember, bool) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	e, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	member, ok := h.authorize(w, r, e.GroupID)
	if !ok {
		return nil, nil, false
	}
	return e, member, true
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, groupID int64) (*group.GroupMember, bool) {
	p, _ := middleware.GetPrincipal(r.Context())
	member, err := h.guard.Authorize(r.Context(), p, groupID, group.ActionView)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, false
	}
	return member, true
}
