package member

import (
	"log/slog"
	"net/http"

	"membership-service/internal/httputil"
	"membership-service/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service   Service
	validator *validation.Validator
	logger    *slog.Logger
}

func NewHandler(service Service, validator *validation.Validator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/members", h.Submit)
}

// Submit stores a membership enrollment.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req EnrollmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.validator.Check(req); err != nil {
		if ve, ok := validation.AsError(err); ok {
			h.logger.WarnContext(r.Context(), "enrollment rejected", "missing", ve.Fields)
			httputil.RespondWithError(w, http.StatusBadRequest, ve.Reason)
			return
		}
		h.logger.ErrorContext(r.Context(), "enrollment validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	enrollment, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save member", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to save member.")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"id": enrollment.ID,
	})
}
