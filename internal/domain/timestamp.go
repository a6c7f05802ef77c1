package domain

import (
	"encoding/json"
	"time"
)

// timestampLayout matches the ISO format browsers emit: UTC, millisecond precision, trailing Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp is a UTC instant persisted as an ISO-8601 string with millisecond precision
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to milliseconds and normalizes it to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// String returns the ISO representation, or an empty string for the zero value
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the values ParseDate accepts. Anything else, including null, "",
// non-string values and unparseable text, decodes to the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = Timestamp{}
		return nil
	}
	parsed, ok := ParseDate(raw)
	if !ok {
		*t = Timestamp{}
		return nil
	}
	*t = NewTimestamp(parsed)
	return nil
}

// ParseDate reads the date strings entered on forms ("2006-01-02") as well as full ISO timestamps
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
