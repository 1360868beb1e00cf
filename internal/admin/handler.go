// Package admin serves the read-only listings behind the shared admin key.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"membership-service/internal/auth"
	"membership-service/internal/contact"
	"membership-service/internal/httputil"
	"membership-service/internal/member"

	"github.com/go-chi/chi/v5"
)

// ListLimit caps every admin listing.
const ListLimit = 200

type EnrollmentLister interface {
	List(ctx context.Context, limit int) ([]member.Enrollment, error)
}

type MessageLister interface {
	List(ctx context.Context, limit int) ([]contact.Message, error)
}

type Handler struct {
	members  EnrollmentLister
	contacts MessageLister
	adminKey string
	logger   *slog.Logger
}

func NewHandler(members EnrollmentLister, contacts MessageLister, adminKey string, logger *slog.Logger) *Handler {
	return &Handler{
		members:  members,
		contacts: contacts,
		adminKey: adminKey,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdminKey(h.adminKey, h.logger))
		r.Get("/members", h.ListMembers)
		r.Get("/contacts", h.ListContacts)
	})
}

// ListMembers returns the newest enrollments.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.List(r.Context(), ListLimit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load members", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to load members")
		return
	}
	if members == nil {
		members = []member.Enrollment{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"members": members,
	})
}

// ListContacts returns the newest contact messages.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context(), ListLimit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load contacts", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to load contacts")
		return
	}
	if contacts == nil {
		contacts = []contact.Message{}
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"contacts": contacts,
	})
}
