package note

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/internal/group"
	"github.com/fkhayef/podplanner/internal/topic"
	"github.com/fkhayef/podplanner/pkg/middleware"
	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for topic notes
type Handler struct {
	service *Service
	guard   group.Authorizer
	log     *zap.Logger
}

// NewHandler creates a new note handler
func NewHandler(service *Service, guard group.Authorizer, log *zap.Logger) *Handler {
	return &Handler{service: service, guard: guard, log: log}
}

// Routes returns the router mounted under /topics/{id}/comments
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Upsert)

	return r
}

// List handles GET /topics/{id}/comments
// @Summary      List notes on a topic
// @Tags         notes
// @Produce      json
// @Param        id path int true "Topic ID"
// @Success      200 {object} response.APIResponse{data=[]NoteResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /topics/{id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	t, _, ok := h.loadTopic(w, r)
	if !ok {
		return
	}

	notes, err := h.service.ListWithAuthors(r.Context(), t.ID)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	out := make([]*NoteResponse, len(notes))
	for i, n := range notes {
		out[i] = n.ToResponse()
	}

	response.JSON(w, http.StatusOK, out)
}

// Upsert handles POST /topics/{id}/comments
// @Summary      Write a note on a topic
// @Description  Each member has one note per topic; posting again overwrites it
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        id path int true "Topic ID"
// @Param        request body UpsertNoteRequest true "Note"
// @Success      200 {object} response.APIResponse{data=NoteResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /topics/{id}/comments [post]
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	t, member, ok := h.loadTopic(w, r)
	if !ok {
		return
	}

	var req UpsertNoteRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	n, err := h.service.Upsert(r.Context(), t.ID, member.UserID, req.Content)
	if err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, n.ToResponse())
}

func (h *Handler) loadTopic(w http.ResponseWriter, r *http.Request) (*topic.Topic, *group.GroupMember, bool) {
	id, err := request.PathID(r, "id")
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	t, err := h.service.Topic(r.Context(), id)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}

	p, _ := middleware.GetPrincipal(r.Context())
	member, err := h.guard.Authorize(r.Context(), p, t.GroupID, group.ActionView)
	if err != nil {
		response.Err(w, h.log, err)
		return nil, nil, false
	}
	return t, member, true
}
