package contact

import (
	"log/slog"
	"net/http"

	"membership-service/internal/httputil"
	"membership-service/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service   *Service
	validator *validation.Validator
	logger    *slog.Logger
}

func NewHandler(service *Service, validator *validation.Validator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/contact", h.Submit)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.validator.Check(req); err != nil {
		if ve, ok := validation.AsError(err); ok {
			h.logger.WarnContext(r.Context(), "contact message rejected", "missing", ve.Fields)
			httputil.RespondWithError(w, http.StatusBadRequest, ve.Reason)
			return
		}
		h.logger.ErrorContext(r.Context(), "contact validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	msg, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save contact message", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to save message.")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"id": msg.ID,
	})
}
