package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"naijacare/internal/platform/middleware"
	"naijacare/internal/routing"
	dErrors "naijacare/pkg/domain-errors"
	audit "naijacare/pkg/platform/audit"
	"naijacare/pkg/platform/httputil"
	"naijacare/pkg/requestcontext"
)

// Disclaimer accompanies every routing response.
const Disclaimer = "Prototype keyword matching; not clinical decision support"

// Service defines the interface for routing operations.
type Service interface {
	Route(ctx context.Context, msg routing.Message) (routing.Decision, error)
	AuditEntries(ctx context.Context) ([]audit.Entry, error)
	Stats(ctx context.Context) (audit.Stats, error)
}

// Handler handles routing and reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	routing Service
}

// New creates a new routing Handler.
func New(routing Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, routing: routing}
}

// Register registers the routing routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/api/route", h.handleRoute)
		r.Get("/api/audit", h.handleAudit)
		r.Get("/api/stats", h.handleStats)
	})
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req RouteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid route request",
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	decision, err := h.routing.Route(ctx, routing.Message{
		Sender:    req.Sender,
		Text:      req.Text,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to route message",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRouteResponse(decision))
}

// handleAudit returns hashed entries only; raw senders and text never reach
// this layer.
func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.routing.AuditEntries(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit entries",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.routing.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to compute stats",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
