package shared

import (
	"net/http"
	"strconv"
)

// Pagination is the limit/offset pair every list endpoint accepts.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads the limit and offset query parameters, falling back
// to defaultLimit and clamping to maxLimit. Malformed or negative values are
// ignored rather than rejected.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	page := Pagination{
		Limit:  positiveInt(q.Get("limit"), defaultLimit),
		Offset: nonNegativeInt(q.Get("offset"), 0),
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

func positiveInt(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func nonNegativeInt(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
