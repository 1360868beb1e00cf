package health

import (
	"context"
	"net/http"
	"time"

	"membership-service/internal/httputil"
	"membership-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Check is one named readiness dependency.
type Check struct {
	Name   string
	Pinger Pinger
}

type Handler struct {
	checks  []Check
	metrics *metrics.HealthMetrics
}

// NewHandler reports ready only while every check answers.
func NewHandler(m *metrics.HealthMetrics, checks ...Check) *Handler {
	return &Handler{checks: checks, metrics: m}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{OK: true, Message: "Server is running"})
}

// Ready pings every dependency and records the outcome.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	ready := true
	for _, check := range h.checks {
		start := time.Now()
		err := check.Pinger.PingContext(ctx)
		h.metrics.RecordDependencyCheck(ctx, check.Name, time.Since(start), err)
		if err != nil {
			ready = false
		}
	}

	if !ready {
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{OK: false})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{OK: true})
}
