package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// EnsureSubscription guarantees a subscription row exists for the user,
// starting everyone on the free plan.
func (s *Store) EnsureSubscription(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO subscriptions (user_id, plan, status)
    VALUES ($1, $2, $3)
    ON CONFLICT (user_id) DO NOTHING
  `, userID, PlanFree, StatusActive)
	return err
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Subscription, error) {
	var out Subscription
	var providerSubID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, user_id, plan, status, provider_subscription_id, current_period_start, current_period_end
    FROM subscriptions
    WHERE user_id = $1
  `, userID).Scan(&out.ID, &out.UserID, &out.Plan, &out.Status, &providerSubID, &out.CurrentPeriodStart, &out.CurrentPeriodEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, ErrSubscriptionNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	if providerSubID != nil {
		out.ProviderSubscriptionID = *providerSubID
	}
	return out, nil
}

// Upgrade records a completed checkout: the user moves to the premium plan
// under the provider subscription's status and period.
func (s *Store) Upgrade(ctx context.Context, userID, providerSubID, status string, periodEnd time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE subscriptions
    SET plan = $1, status = $2, provider_subscription_id = $3,
        current_period_start = now(), current_period_end = $4, updated_at = now()
    WHERE user_id = $5
  `, PlanPremium, status, providerSubID, periodEnd, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// UpdateByProviderSubID applies a provider-side status change. Unknown
// provider subscription IDs are ignored, matching the webhook contract.
func (s *Store) UpdateByProviderSubID(ctx context.Context, providerSubID, status string, periodEnd time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE subscriptions
    SET status = $1, current_period_end = $2, updated_at = now()
    WHERE provider_subscription_id = $3
  `, status, periodEnd, providerSubID)
	return err
}

func (s *Store) MarkCanceled(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE subscriptions
    SET status = $1, updated_at = now()
    WHERE user_id = $2
  `, StatusCanceled, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// EventSeen reports whether a webhook event ID has already been applied.
func (s *Store) EventSeen(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)
  `, eventID).Scan(&seen)
	if err != nil {
		return false, err
	}
	return seen, nil
}

// RecordEvent inserts a webhook event ID for idempotency. It reports false
// when the event was already processed.
func (s *Store) RecordEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO webhook_events (event_id, event_type)
    VALUES ($1, $2)
    ON CONFLICT (event_id) DO NOTHING
  `, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
