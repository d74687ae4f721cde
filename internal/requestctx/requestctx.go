package requestctx

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID attaches the request id so handlers and domain services can
// echo it into responses, audit events and log lines.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}
