package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"membership-service/internal/account"
	"membership-service/internal/httputil"
	"membership-service/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service   *Service
	sessions  *SessionManager
	validator *validation.Validator
	adminKey  string
	logger    *slog.Logger
}

func NewHandler(service *Service, sessions *SessionManager, validator *validation.Validator, adminKey string, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: validator,
		adminKey:  adminKey,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)
	router.Get("/auth/me", h.Me)
	router.Post("/auth/logout", h.Logout)
	router.With(h.sessions.RequireSession).Get("/member/links", h.Links)
}

// Register creates a member account. Only holders of the admin key may call it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if !AdminKeyMatches(h.adminKey, req.AdminKey) {
		h.logger.WarnContext(r.Context(), "registration rejected: bad admin key")
		httputil.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.validate(w, r, req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailExists):
			httputil.RespondWithError(w, http.StatusConflict, "Email already registered.")
		case errors.Is(err, ErrHashFailed):
			h.logger.ErrorContext(r.Context(), "password hashing failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		default:
			h.logger.ErrorContext(r.Context(), "failed to create user", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to create user.")
		}
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"id": user.ID,
	})
}

// Login verifies credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if !h.validate(w, r, req) {
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	identity := Identity{ID: user.ID, Email: user.Email, Role: user.Role}
	if _, err := h.sessions.Issue(r.Context(), w, identity); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start session", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.logger.InfoContext(r.Context(), "member logged in", "id", user.ID)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": identity,
	})
}

// Me reports the current session's identity, or ok:false without one.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.sessions.Current(r)
	if !ok {
		httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": false})
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": identity,
	})
}

// Logout ends the session. It succeeds whether or not one existed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.WarnContext(r.Context(), "failed to delete session", "error", err)
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Links returns the logged-in member's help flags and community channels.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "Not logged in")
		return
	}

	links, err := h.service.Links(r.Context(), identity.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load user links", "id", identity.ID, "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to load user links")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"links": links,
	})
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, req validation.Request) bool {
	err := h.validator.Check(req)
	if err == nil {
		return true
	}
	if ve, ok := validation.AsError(err); ok {
		h.logger.WarnContext(r.Context(), "auth request rejected", "missing", ve.Fields)
		httputil.RespondWithError(w, http.StatusBadRequest, ve.Reason)
		return false
	}
	h.logger.ErrorContext(r.Context(), "validation failed", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "Server error")
	return false
}
