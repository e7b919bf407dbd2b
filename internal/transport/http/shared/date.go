package shared

import "time"

// ParseDate accepts RFC3339 or the plain YYYY-MM-DD form the intake form
// submits for effective and review dates.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
