package util

import (
	"fmt"
	"strings"
	"time"
)

// OptionalTime parses an RFC 3339 value into UTC and records a field error on
// e when the value is malformed. Empty input yields nil.
func (e *ValidationError) OptionalTime(field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		e.Add(field, fmt.Sprintf("invalid date-time %q, expected RFC 3339", value))
		return nil
	}
	t = t.UTC()
	return &t
}
