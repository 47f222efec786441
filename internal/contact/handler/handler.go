// Package handler exposes contact OTP endpoints: sending a one-time code to
// the draft's email or phone and verifying the code the user typed back.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sellerflow/internal/onboarding/models"
	"sellerflow/internal/transport/http/shared"
	id "sellerflow/pkg/domain"
	dErrors "sellerflow/pkg/domain-errors"
	"sellerflow/pkg/requestcontext"
)

// Service defines the OTP operations the handler needs.
type Service interface {
	SendCode(ctx context.Context, userID id.UserID, channel models.Channel) error
	VerifyCode(ctx context.Context, userID id.UserID, channel models.Channel, code string) error
}

// Handler wires contact-verification endpoints to the contact service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a contact handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts contact endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/contact/send", h.HandleSend)
	r.Post("/contact/verify", h.HandleVerify)
}

type sendRequest struct {
	Channel string `json:"channel"`
}

type verifyRequest struct {
	Channel string `json:"channel"`
	Code    string `json:"code"`
}

// HandleSend handles POST /contact/send: issues a one-time code for the
// channel's current draft value, subject to the resend cooldown.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := shared.Decode[sendRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.SendCode(ctx, userID, models.Channel(req.Channel)); err != nil {
		h.logger.ErrorContext(ctx, "otp send failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"channel", req.Channel,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, map[string]string{
		"channel": req.Channel,
		"status":  "sent",
	})
}

// HandleVerify handles POST /contact/verify: checks the typed code and, on a
// match, marks the channel verified on the draft.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := shared.Decode[verifyRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.VerifyCode(ctx, userID, models.Channel(req.Channel), req.Code); err != nil {
		h.logger.WarnContext(ctx, "otp verify failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"channel", req.Channel,
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"channel": req.Channel,
		"status":  "verified",
	})
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}
