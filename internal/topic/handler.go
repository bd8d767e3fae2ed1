package topic

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for the topic vault
type Handler struct {
	service *Service
	guard   group.Authorizer
	log     *zap.Logger
}

// NewHandler creates a new topic handler
func NewHandler(service *Service, guard group.Authorizer, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, log: log}
}

// GroupRoutes returns the router mounted under /groups/{id}/topics
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	return r
}

// Routes returns the router for /topics
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)

	return r
}

// Create handles POST /groups/{id}/topics
// @Summary      Add a topic to the vault
// @Description  Either name or url is required; the name defaults to the url
// @Tags         topics
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body CreateTopicRequest true "Topic"
// @Success      201 {object} response.APIResponse{data=TopicResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/topics [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}
	if !h.authorize(w, r, groupID) {
		return
	}

	var req CreateTopicRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	t, err := h.service.Create(r.Context(), groupID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusCreated, t.ToResponse())
}

// List handles GET /groups/{id}/topics
// @Summary      List the topic vault
// @Tags         topics
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        archived query bool false "Only archived (true) or only active (false) topics"
// @Param        deleted query bool false "Only deleted (true) or only kept (false) topics"
// @Success      200 {object} response.APIResponse{data=[]TopicResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{id}/topics [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groupID, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}
	if !h.authorize(w, r, groupID) {
		return
	}

	var filter Filter
	if filter.Archived, err = request.QueryBool(r, "archived"); err != nil {
		response.Err(w, h.log, err)
		return
	}
	if filter.Deleted, err = request.QueryBool(r, "deleted"); err != nil {
		response.Err(w, h.log, err)
		return
	}

	topics, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	out := make([]*TopicResponse, 0, len(topics))
	for _, t := range topics {
		if filter.Match(t) {
			out = append(out, t.ToResponse())
		}
	}

	response.JSON(w, http.StatusOK, out)
}

// GetByID handles GET /topics/{id}
// @Summary      Get a topic
// @Tags         topics
// @Produce      json
// @Param        id path int true "Topic ID"
// @Success      200 {object} response.APIResponse{data=TopicResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /topics/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTopic(w, r)
	if !ok {
		return
	}

	response.JSON(w, http.StatusOK, t.ToResponse())
}

// Update handles PATCH /topics/{id}
// @Summary      Update a topic
// @Description  Rename, relink, archive or delete a topic
// @Tags         topics
// @Accept       json
// @Produce      json
// @Param        id path int true "Topic ID"
// @Param        request body UpdateTopicRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=TopicResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /topics/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.loadTopic(w, r)
	if !ok {
		return
	}

	var req UpdateTopicRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	updated, err := h.service.Update(r.Context(), t.ID, &req)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, updated.ToResponse())
}

// loadTopic resolves the {id} topic and checks the caller belongs to its group
func (h *Handler) loadTopic(w http.ResponseWriter, r *http.Request) (*Topic, bool) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return nil, false
	}

	t, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, false
	}

	if !h.authorize(w, r, t.GroupID) {
		return nil, false
	}
	return t, true
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, groupID int64) bool {
	p, _ := middleware.GetPrincipal(r.Context())
	if _, err := h.guard.Authorize(r.Context(), p, groupID, group.ActionView); err != nil {
		response.Err(w, h.log, err)
		return false
	}
	return true
}
