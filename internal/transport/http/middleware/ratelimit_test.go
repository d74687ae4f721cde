package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"appraisal/internal/domain/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	ctx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{UserID: "user-1", Role: "EMPLOYEE"})
	first := httptest.NewRequest("GET", "/api/v1/evaluations", nil).WithContext(ctx)
	first.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status %d", rec.Code)
	}

	// Same user from a different address still counts against the same bucket.
	second := httptest.NewRequest("GET", "/api/v1/evaluations", nil).WithContext(ctx)
	second.RemoteAddr = "10.0.0.2:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	handler := RateLimit(1, time.Minute)(okHandler())

	r := httptest.NewRequest("GET", "/api/v1/periods", nil)
	r.RemoteAddr = "10.0.0.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same ip second request status %d, want 429", rec.Code)
	}

	other := httptest.NewRequest("GET", "/api/v1/periods", nil)
	other.RemoteAddr = "10.0.0.10:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("different ip status %d, want 200", rec.Code)
	}
}

func TestSensitiveMutationRateLimitKeysLoginByEmail(t *testing.T) {
	handler := SensitiveMutationRateLimit(4, time.Minute)(okHandler())

	login := func(remoteAddr, email string) int {
		body := strings.NewReader(`{"email":"` + email + `","password":"x"}`)
		r := httptest.NewRequest("POST", "/api/v1/auth/login", body)
		r.Header.Set("Content-Type", "application/json")
		r.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		return rec.Code
	}

	// baseLimit/4 = 1 attempt per email per window, even across addresses.
	if code := login("10.0.0.1:1000", "a@example.com"); code != http.StatusOK {
		t.Fatalf("first attempt status %d", code)
	}
	if code := login("10.0.0.2:1000", "a@example.com"); code != http.StatusTooManyRequests {
		t.Fatalf("second attempt for same email status %d, want 429", code)
	}
	if code := login("10.0.0.3:1000", "b@example.com"); code != http.StatusOK {
		t.Fatalf("different email status %d, want 200", code)
	}
}

func TestSensitiveMutationRateLimitIgnoresReads(t *testing.T) {
	handler := SensitiveMutationRateLimit(4, time.Minute)(okHandler())

	r := httptest.NewRequest("GET", "/api/v1/evaluations", nil)
	r.RemoteAddr = "10.0.0.1:1000"
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("read %d status %d, want 200", i, rec.Code)
		}
	}
}

func TestSensitiveScope(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/api/v1/auth/login", scopeAuth},
		{"POST", "/api/v1/scheduler/run", scopeActor},
		{"PUT", "/api/v1/evaluations/abc/self-assessment", scopeActor},
		{"PUT", "/api/v1/evaluations/abc/review", scopeActor},
		{"POST", "/api/v1/evaluations/abc/restore", scopeActor},
		{"DELETE", "/api/v1/evaluations/abc", scopeActor},
		{"GET", "/api/v1/evaluations/abc", scopeNone},
		{"POST", "/api/v1/periods", scopeNone},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.path, nil)
		if got := sensitiveScope(r); got != tc.want {
			t.Fatalf("%s %s: scope %q, want %q", tc.method, tc.path, got, tc.want)
		}
	}
}
