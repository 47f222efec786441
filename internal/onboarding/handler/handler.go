// Package handler exposes the onboarding wizard over HTTP. All routes operate
// on the authenticated user's own draft; there is no cross-user access.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/onboarding/patch"
	"sellerflow/internal/onboarding/steps"
	"sellerflow/internal/profile"
	"sellerflow/internal/transport/http/shared"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/requestcontext"
)

// Service defines the wizard operations the handler needs.
type Service interface {
	StartOrResume(ctx context.Context, userID id.UserID) (*models.Draft, error)
	ApplyPatch(ctx context.Context, userID id.UserID, p patch.Patch) (*models.Draft, error)
	CheckAvailability(ctx context.Context, userID id.UserID, channel models.Channel) (bool, error)
	Advance(ctx context.Context, userID id.UserID) (*models.Draft, error)
	Retreat(ctx context.Context, userID id.UserID) (*models.Draft, error)
	GoToStep(ctx context.Context, userID id.UserID, step steps.ID) (*models.Draft, error)
	Save(ctx context.Context, userID id.UserID) (bool, error)
	Reset(ctx context.Context, userID id.UserID, confirm bool) error
	Submit(ctx context.Context, userID id.UserID) (*profile.SellerProfile, error)
}

// Handler wires onboarding endpoints to the wizard service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an onboarding handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts onboarding endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/onboarding/draft", h.HandleGetDraft)
	r.Patch("/onboarding/draft", h.HandlePatchDraft)
	r.Post("/onboarding/draft/advance", h.HandleAdvance)
	r.Post("/onboarding/draft/retreat", h.HandleRetreat)
	r.Post("/onboarding/draft/step", h.HandleGoToStep)
	r.Post("/onboarding/draft/save", h.HandleSave)
	r.Post("/onboarding/draft/reset", h.HandleReset)
	r.Post("/onboarding/draft/availability", h.HandleAvailability)
	r.Post("/onboarding/submit", h.HandleSubmit)
}

// HandleGetDraft handles GET /onboarding/draft: returns the current draft,
// creating or resuming one when none is in progress.
func (h *Handler) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	draft, err := h.service.StartOrResume(ctx, userID)
	if err != nil {
		h.logError(ctx, "start or resume failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, FromDraft(draft))
}

// HandlePatchDraft handles PATCH /onboarding/draft.
func (h *Handler) HandlePatchDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	p, ok := shared.Decode[patch.Patch](w, r)
	if !ok {
		return
	}
	if p.IsEmpty() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "patch carries no fields"))
		return
	}

	draft, err := h.service.ApplyPatch(ctx, userID, p)
	if err != nil {
		h.logError(ctx, "patch failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, FromDraft(draft))
}

// HandleAdvance handles POST /onboarding/draft/advance.
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.Advance)
}

// HandleRetreat handles POST /onboarding/draft/retreat.
func (h *Handler) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.service.Retreat)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, op func(context.Context, id.UserID) (*models.Draft, error)) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	draft, err := op(ctx, userID)
	if err != nil {
		h.logError(ctx, "step navigation failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, FromDraft(draft))
}

// HandleGoToStep handles POST /onboarding/draft/step.
func (h *Handler) HandleGoToStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := shared.Decode[goToStepRequest](w, r)
	if !ok {
		return
	}

	draft, err := h.service.GoToStep(ctx, userID, steps.ID(req.Step))
	if err != nil {
		h.logError(ctx, "step jump failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, FromDraft(draft))
}

// HandleSave handles POST /onboarding/draft/save: an explicit flush ahead of
// the debounce timer.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	saved, err := h.service.Save(ctx, userID)
	if err != nil {
		h.logError(ctx, "save failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, saveResponse{Saved: saved})
}

// HandleReset handles POST /onboarding/draft/reset. The body must carry
// confirm=true; the endpoint destroys all wizard progress.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := shared.Decode[resetRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Reset(ctx, userID, req.Confirm); err != nil {
		h.logError(ctx, "reset failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAvailability handles POST /onboarding/draft/availability: the
// uniqueness pre-check run when an email or phone field loses focus.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := shared.Decode[availabilityRequest](w, r)
	if !ok {
		return
	}

	taken, err := h.service.CheckAvailability(ctx, userID, models.Channel(req.Channel))
	if err != nil {
		h.logError(ctx, "availability check failed", userID, err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, availabilityResponse{
		Channel:   req.Channel,
		Available: !taken,
	})
}

// HandleSubmit handles POST /onboarding/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	p, err := h.service.Submit(ctx, userID)
	if err != nil {
		h.logError(ctx, "submission failed", userID, err)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application submitted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"profile_id", p.ID,
	)
	shared.WriteJSON(w, http.StatusCreated, FromProfile(p))
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) logError(ctx context.Context, msg string, userID id.UserID, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
}
