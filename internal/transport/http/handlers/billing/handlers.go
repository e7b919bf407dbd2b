package billinghandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"policygen/internal/domain/billing"
	"policygen/internal/platform/config"
	"policygen/internal/platform/requestctx"
	"policygen/internal/transport/http/api"
	"policygen/internal/transport/http/middleware"
)

const maxWebhookBytes = 256 * 1024

type Handler struct {
	Billing *billing.Service
	Config  config.Config
}

func NewHandler(billingSvc *billing.Service, cfg config.Config) *Handler {
	return &Handler{Billing: billingSvc, Config: cfg}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	url, err := h.Billing.Checkout(r.Context(), user.UserID, user.Email)
	if err != nil {
		slog.Error("checkout session failed", "userId", user.UserID, "err", err)
		api.Fail(w, http.StatusBadGateway, "checkout_failed", "failed to start checkout", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"url": url}, requestctx.GetRequestID(r.Context()))
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestctx.GetRequestID(r.Context()))
		return
	}

	err := h.Billing.Cancel(r.Context(), user.UserID)
	if errors.Is(err, billing.ErrNoProviderSub) {
		api.Fail(w, http.StatusBadRequest, "no_subscription", "no active provider subscription to cancel", requestctx.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		slog.Error("subscription cancel failed", "userId", user.UserID, "err", err)
		api.Fail(w, http.StatusBadGateway, "cancel_failed", "failed to cancel subscription", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "canceled"}, requestctx.GetRequestID(r.Context()))
}

// HandleWebhook verifies the provider signature over the raw body before
// decoding anything. The endpoint is unauthenticated; the signature is
// the authentication.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read payload", requestctx.GetRequestID(r.Context()))
		return
	}

	header := r.Header.Get("Stripe-Signature")
	if err := billing.VerifySignature(h.Config.BillingWebhookSecret, header, payload, time.Now(), billing.DefaultSignatureTolerance); err != nil {
		slog.Warn("webhook signature rejected", "err", err)
		api.Fail(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", requestctx.GetRequestID(r.Context()))
		return
	}

	var event billing.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid event payload", requestctx.GetRequestID(r.Context()))
		return
	}

	if err := h.Billing.HandleEvent(r.Context(), event); err != nil && !errors.Is(err, billing.ErrUnhandledEvent) {
		slog.Error("webhook event failed", "eventId", event.ID, "type", event.Type, "err", err)
		api.Fail(w, http.StatusInternalServerError, "event_failed", "failed to process event", requestctx.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]string{"status": "received"}, requestctx.GetRequestID(r.Context()))
}
