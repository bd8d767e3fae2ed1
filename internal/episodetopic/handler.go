package episodetopic

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/episode"
	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for an episode's topics
type Handler struct {
	service *Service
	guard   group.Authorizer
	log     *zap.Logger
}

// NewHandler creates a new association handler
func NewHandler(service *Service, guard group.Authorizer, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, log: log}
}

// Routes returns the router mounted under /episodes/{id}/topics
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Put("/order", h.Reorder)
	r.Post("/{topicId}", h.Attach)
	r.Delete("/{topicId}", h.Detach)

	return r
}

// List handles GET /episodes/{id}/topics
// @Summary      List an episode's topics
// @Tags         episode-topics
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} response.APIResponse{data=[]EntryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id}/topics [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListForEpisode(r.Context(), e.ID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, toResponses(entries))
}

// Attach handles POST /episodes/{id}/topics/{topicId}
// @Summary      Attach a topic to an episode
// @Description  Attaching an already attached topic only changes its order
// @Tags         episode-topics
// @Accept       json
// @Produce      json
// @Param        id path int true "Episode ID"
// @Param        topicId path int true "Topic ID"
// @Param        request body AttachRequest true "Position"
// @Success      200 {object} response.APIResponse{data=Association}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id}/topics/{topicId} [post]
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	e, member, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	topicID, err := request.PathID(r, "topicId")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	var req AttachRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	a, err := h.service.Attach(r.Context(), e.ID, topicID, member.UserID, *req.Order)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, a)
}

// Detach handles DELETE /episodes/{id}/topics/{topicId}
// @Summary      Detach a topic from an episode
// @Tags         episode-topics
// @Produce      json
// @Param        id path int true "Episode ID"
// @Param        topicId path int true "Topic ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id}/topics/{topicId} [delete]
func (h *Handler) Detach(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	topicID, err := request.PathID(r, "topicId")
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	if err := h.service.Detach(r.Context(), e.ID, topicID); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Topic removed from episode"})
}

// Reorder handles PUT /episodes/{id}/topics/order
// @Summary      Reorder an episode's topics
// @Description  topic_ids must list every attached topic exactly once
// @Tags         episode-topics
// @Accept       json
// @Produce      json
// @Param        id path int true "Episode ID"
// @Param        request body ReorderRequest true "New order"
// @Success      200 {object} response.APIResponse{data=[]EntryResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /episodes/{id}/topics/order [put]
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	e, _, ok := h.loadEpisode(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	entries, err := h.service.Reorder(r.Context(), e.ID, req.TopicIDs)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, toResponses(entries))
}

func (h *Handler) loadEpisode(w http.ResponseWriter, r *http.Request) (*episode.Episode, *group.GroupMember, bool) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	e, err := h.service.Episode(r.Context(), id)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	p, _ := middleware.GetPrincipal(r.Context())
	member, err := h.guard.Authorize(r.Context(), p, e.GroupID, group.ActionView)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}
	return e, member, true
}
