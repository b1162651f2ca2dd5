package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

func Generate() string {
	return uuid.NewString()
}

func ToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromContext returns the request ID carried by the context, or the empty
// string when the request entered outside the middleware chain.
func FromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}
