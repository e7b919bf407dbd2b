package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"policygen/internal/platform/config"
	"policygen/internal/platform/email"
)

type Service struct {
	store    *Store
	provider Provider
	mailer   email.Mailer
	cfg      config.Config
}

func NewService(store *Store, provider Provider, mailer email.Mailer, cfg config.Config) *Service {
	return &Service{store: store, provider: provider, mailer: mailer, cfg: cfg}
}

func (s *Service) EnsureSubscription(ctx context.Context, userID string) error {
	return s.store.EnsureSubscription(ctx, userID)
}

func (s *Service) GetSubscription(ctx context.Context, userID string) (Subscription, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Checkout opens a provider checkout session for the premium plan and
// returns the redirect URL.
func (s *Service) Checkout(ctx context.Context, userID, userEmail string) (string, error) {
	if err := s.store.EnsureSubscription(ctx, userID); err != nil {
		return "", err
	}
	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:           s.cfg.BillingPriceID,
		ClientReferenceID: userID,
		CustomerEmail:     userEmail,
		SuccessURL:        s.cfg.CheckoutSuccessURL,
		CancelURL:         s.cfg.CheckoutCancelURL,
	})
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// Cancel cancels the user's provider subscription and marks it locally.
func (s *Service) Cancel(ctx context.Context, userID string) error {
	sub, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if sub.ProviderSubscriptionID == "" {
		return ErrNoProviderSub
	}
	if err := s.provider.CancelSubscription(ctx, sub.ProviderSubscriptionID); err != nil {
		return err
	}
	return s.store.MarkCanceled(ctx, userID)
}

// HandleEvent applies one verified webhook event. Duplicate events are
// acknowledged without reprocessing; irrelevant event types are ignored.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	if !Relevant(event.Type) {
		return nil
	}

	seen, err := s.store.EventSeen(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		slog.Info("duplicate webhook event skipped", "eventId", event.ID, "type", event.Type)
		return nil
	}

	if err := s.applyEvent(ctx, event); err != nil {
		return err
	}

	// The event ID is recorded only after the event was applied. A failed
	// apply returns an error status, and the provider's retry must not be
	// mistaken for a duplicate.
	_, err = s.store.RecordEvent(ctx, event.ID, event.Type)
	return err
}

func (s *Service) applyEvent(ctx context.Context, event Event) error {
	switch event.Type {
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub eventSubscription
		if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
			return fmt.Errorf("decode subscription object: %w", err)
		}
		return s.store.UpdateByProviderSubID(ctx, sub.ID, MapProviderStatus(sub.Status), unixTime(sub.CurrentPeriodEnd))

	case EventCheckoutCompleted:
		var session eventCheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return fmt.Errorf("decode checkout session object: %w", err)
		}
		if session.Mode != "subscription" {
			return nil
		}
		providerSub, err := s.provider.RetrieveSubscription(ctx, session.Subscription)
		if err != nil {
			return err
		}
		if err := s.store.Upgrade(ctx, session.ClientReferenceID, providerSub.ID, MapProviderStatus(providerSub.Status), providerSub.CurrentPeriodEnd); err != nil {
			return err
		}
		s.sendReceipt(ctx, session.ClientReferenceID)
		return nil
	}

	return ErrUnhandledEvent
}

func (s *Service) sendReceipt(ctx context.Context, userID string) {
	var to string
	if err := s.store.DB.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&to); err != nil {
		slog.Warn("receipt lookup failed", "userId", userID, "err", err)
		return
	}
	body := "Your premium subscription is now active. You can manage it any time from the billing settings page."
	if err := s.mailer.Send(ctx, s.cfg.EmailFrom, to, "Subscription confirmed", body); err != nil {
		slog.Warn("receipt send failed", "userId", userID, "err", err)
	}
}
