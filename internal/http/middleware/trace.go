package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder captures the response status for the trace line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func Trace(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// WebSocket upgrades hijack the connection; wrapping the writer
			// would break the upgrade, so the feed passes through unrecorded.
			if r.URL.Path == "/v1/feed" {
				next.ServeHTTP(w, r)
				if logger != nil {
					logger.Printf(
						"trace request_id=%s method=%s path=%s duration_ms=%d",
						GetRequestID(r.Context()),
						r.Method,
						r.URL.Path,
						time.Since(start).Milliseconds(),
					)
				}
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			if logger != nil {
				logger.Printf(
					"trace request_id=%s method=%s path=%s status=%d duration_ms=%d",
					GetRequestID(r.Context()),
					r.Method,
					r.URL.Path,
					recorder.status,
					time.Since(start).Milliseconds(),
				)
			}
		})
	}
}
