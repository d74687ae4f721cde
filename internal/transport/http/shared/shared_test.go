package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "name is required")
	v.Add("year", "must be a plausible year")
	v.Add("endDate", "must be on or after startDate")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Field > issues[i].Field {
			t.Fatalf("issues not sorted: %+v", issues)
		}
	}
}

func TestValidatorEnumIgnoresEmptyAndCase(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"open"}, "must be open")
	v.Enum("status", "OPEN", []string{"open"}, "must be open")
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
	v.Enum("status", "archived", []string{"open"}, "must be open")
	if !v.HasIssues() {
		t.Fatal("unknown enum value not rejected")
	}
}

func TestValidatorMaxLen(t *testing.T) {
	v := NewValidator()
	v.MaxLen("comment", "short", 10)
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
	v.MaxLen("comment", "this is far too long", 10)
	if !v.HasIssues() {
		t.Fatal("oversized value not rejected")
	}
}

func TestParseDateFormats(t *testing.T) {
	if d, err := ParseDate("2026-03-01"); err != nil || d.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("plain date: %v %v", d, err)
	}
	if d, err := ParseDate("2026-03-01T10:30:00Z"); err != nil || d.UTC().Hour() != 10 {
		t.Fatalf("rfc3339: %v %v", d, err)
	}
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("empty must parse to zero: %v %v", d, err)
	}
	if _, err := ParseDate("01/03/2026"); err == nil {
		t.Fatal("unknown format must fail")
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	v.DateOrder("startDate", start, "endDate", end)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected issues on both fields, got %+v", v.Issues())
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=500&offset=20", nil)
	page := ParsePagination(r, 50, 200)
	if page.Limit != 200 || page.Offset != 20 {
		t.Fatalf("got %+v, want limit clamped to 200, offset 20", page)
	}

	r = httptest.NewRequest("GET", "/?limit=-3&offset=oops", nil)
	page = ParsePagination(r, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("got %+v, want defaults on bad input", page)
	}
}
