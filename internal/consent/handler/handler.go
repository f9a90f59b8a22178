package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"naijacare/internal/consent/models"
	"naijacare/internal/consent/service"
	"naijacare/internal/platform/middleware"
	dErrors "naijacare/pkg/domain-errors"
	"naijacare/pkg/platform/httputil"
	platformstrings "naijacare/pkg/platform/strings"
	"naijacare/pkg/requestcontext"
)

// Service defines the interface for consent operations.
type Service interface {
	Grant(ctx context.Context, req service.GrantRequest) (*models.Record, error)
	Withdraw(ctx context.Context, subjectID string) (*models.Record, error)
	WithdrawAndAnonymize(ctx context.Context, subjectID string) (*models.Record, error)
	Get(ctx context.Context, subjectID string) (*models.Record, error)
	Validate(ctx context.Context, subjectID string, required []models.Scope) error
}

// Handler handles consent-related endpoints.
type Handler struct {
	logger   *slog.Logger
	consent  Service
	required []models.Scope
}

// New creates a consent Handler. required is the scope set checked by the
// validate endpoint when the request names none.
func New(consent Service, logger *slog.Logger, required []models.Scope) *Handler {
	return &Handler{
		logger:   logger,
		consent:  consent,
		required: required,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/api/consent/{subjectID}/grant", h.handleGrant)
		r.Post("/api/consent/{subjectID}/withdraw", h.handleWithdraw)
		r.Post("/api/consent/{subjectID}/anonymize", h.handleAnonymize)
		r.Get("/api/consent/{subjectID}", h.handleGet)
		r.Get("/api/consent/{subjectID}/validate", h.handleValidate)
	})
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req GrantRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid grant consent request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	req.sanitize()

	record, err := h.consent.Grant(ctx, service.GrantRequest{
		SubjectID:      chi.URLParam(r, "subjectID"),
		AgeYears:       req.AgeYears,
		Scopes:         req.Scopes,
		ConsentVersion: req.ConsentVersion,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to grant consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if _, err := h.consent.Withdraw(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		h.writeServiceError(r.Context(), w, "failed to withdraw consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	if _, err := h.consent.WithdrawAndAnonymize(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		h.writeServiceError(r.Context(), w, "failed to anonymize consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.consent.Get(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to load consent", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// handleValidate answers whether the subject's consent currently allows
// processing. ?scopes=a,b overrides the default scope set.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	required := h.required
	if raw := platformstrings.SplitList(r.URL.Query().Get("scopes")); len(raw) > 0 {
		scopes, err := models.ParseScopes(platformstrings.NormalizeTokens(raw))
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid scopes"))
			return
		}
		required = scopes
	}

	err := h.consent.Validate(r.Context(), chi.URLParam(r, "subjectID"), required)
	var ve *models.ValidationError
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: true})
	case errors.As(err, &ve):
		httputil.WriteJSON(w, http.StatusOK, ValidateResponse{
			Valid:   false,
			Reason:  string(ve.Reason),
			Message: ve.Error(),
		})
	default:
		h.writeServiceError(r.Context(), w, "failed to validate consent", err)
	}
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
