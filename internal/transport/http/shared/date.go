package shared

import "time"

const dateLayout = "2006-01-02"

// ParseDate reads the two timestamp shapes the API accepts: full RFC3339 and
// bare YYYY-MM-DD. An empty value parses to the zero time, which filters
// treat as absent.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}
