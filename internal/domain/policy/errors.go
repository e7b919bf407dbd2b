package policy

import "errors"

var (
	ErrPolicyNotFound = errors.New("policy not found")
	ErrPolicyLimit    = errors.New("saved policy limit reached for current plan")
)

// MissingFieldError reports an absent required scalar on a disclosure
// record. Field names match the JSON form field names.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
