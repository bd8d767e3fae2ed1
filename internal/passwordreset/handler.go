package passwordreset

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/pkg/request"
	"github.com/fkhayef/podplanner/pkg/response"
)

// Handler handles HTTP requests for password reset
type Handler struct {
	service *Service
	log     *zap.Logger
}

// NewHandler creates a new password reset handler
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes binds the reset endpoints onto r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/forgot-password", h.Forgot)
	r.Post("/reset-password", h.Reset)
}

// Forgot handles POST /forgot-password
// @Summary      Request a password reset link
// @Description  Always succeeds; a link is mailed only when the email has an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /forgot-password [post]
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	if err := h.service.RequestReset(r.Context(), req.Email); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists with this email, you will receive a password reset link.",
	})
}

// Reset handles POST /reset-password
// @Summary      Set a new password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Token and new password"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /reset-password [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := request.Decode(r, &req); err != nil {
		response.Err(w, h.log, err)
		return
	}

	if err := h.service.CompleteReset(r.Context(), req.Token, req.Password); err != nil {
		response.Err(w, h.log, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully"})
}
