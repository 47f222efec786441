// Package handler exposes the identity-verification session endpoints: start,
// poll status, and retry after failure.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sellerflow/internal/identity"
	"sellerflow/internal/transport/http/shared"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/requestcontext"
)

// Service defines the verification-session operations the handler needs.
type Service interface {
	Start(ctx context.Context, userID id.UserID) (*identity.Session, error)
	Status(ctx context.Context, userID id.UserID) (*identity.Session, error)
	Retry(ctx context.Context, userID id.UserID) error
}

// Handler wires identity-verification endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an identity handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts identity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/session", h.HandleStart)
	r.Get("/identity/session", h.HandleStatus)
	r.Post("/identity/session/retry", h.HandleRetry)
}

// HandleStart handles POST /identity/session. Idempotent while a session is
// PENDING: reloading the step does not spawn a second provider session.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	session, err := h.service.Start(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification start failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, session)
}

// HandleStatus handles GET /identity/session.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	session, err := h.service.Status(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, session)
}

// HandleRetry handles POST /identity/session/retry: clears a FAILED session so
// the user can start again.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Retry(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "verification retry rejected",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}
