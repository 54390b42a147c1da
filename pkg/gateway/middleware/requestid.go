package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/BrianCLong/govgate/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header for the request correlation id.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a correlation id to every request. A client-sent
// X-Request-ID is honored; otherwise a new UUID is generated. The id is
// stored in the context and echoed on the response so verdicts, logs,
// and audit records all correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
