package billing

import (
	"encoding/json"
	"time"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is the provider's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type eventSubscription struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

type eventCheckoutSession struct {
	Mode              string `json:"mode"`
	Subscription      string `json:"subscription"`
	ClientReferenceID string `json:"client_reference_id"`
}

// Relevant reports whether the event type is one this service acts on.
func Relevant(eventType string) bool {
	switch eventType {
	case EventCheckoutCompleted, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	}
	return false
}

// MapProviderStatus translates the provider's subscription status into the
// local status vocabulary. Unknown statuses map to ACTIVE, matching the
// provider's treatment of incomplete-but-usable subscriptions.
func MapProviderStatus(status string) string {
	switch status {
	case "active":
		return StatusActive
	case "canceled":
		return StatusCanceled
	case "past_due":
		return StatusPastDue
	case "trialing":
		return StatusTrialing
	default:
		return StatusActive
	}
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
