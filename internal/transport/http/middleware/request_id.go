package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"appraisal/internal/requestctx"
)

// RequestID honors an inbound X-Request-Id so ids survive proxies, otherwise
// mints one. The id is echoed on the response and stored on the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := requestctx.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
