package billing

import "time"

const (
	PlanFree    = "FREE"
	PlanPremium = "PREMIUM"
)

const (
	StatusActive   = "ACTIVE"
	StatusCanceled = "CANCELED"
	StatusPastDue  = "PAST_DUE"
	StatusTrialing = "TRIALING"
)

type Subscription struct {
	ID                     string     `json:"id"`
	UserID                 string     `json:"userId"`
	Plan                   string     `json:"plan"`
	Status                 string     `json:"status"`
	ProviderSubscriptionID string     `json:"providerSubscriptionId,omitempty"`
	CurrentPeriodStart     *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"currentPeriodEnd,omitempty"`
}

// Premium reports whether the subscription currently unlocks paid features.
func (s Subscription) Premium() bool {
	if s.Plan != PlanPremium {
		return false
	}
	return s.Status == StatusActive || s.Status == StatusTrialing
}
