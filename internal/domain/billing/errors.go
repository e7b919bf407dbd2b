package billing

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoProviderSub        = errors.New("subscription has no provider subscription id")
	ErrInvalidSignature     = errors.New("webhook signature verification failed")
	ErrSignatureExpired     = errors.New("webhook signature timestamp outside tolerance")
	ErrUnhandledEvent       = errors.New("unhandled webhook event type")
)
