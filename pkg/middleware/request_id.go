package middleware

import (
	"net/http"

	"github.com/dandori-work/fcfs-booking/pkg/requestid"
)

const requestIDHeader = "X-Request-Id"

// RequestID adopts the caller's X-Request-Id header, or mints one when the
// header is absent, and carries it in the request context. The ID is echoed
// on the response so callers can correlate their logs with ours.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = requestid.Generate()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), id)))
	})
}
