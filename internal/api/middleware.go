package api

import (
	"net/http"
	"time"

	"delivery-tracking-service/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestIDMiddleware tags each request with an id, honoring one supplied by
// the caller so upstream proxies can correlate.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(obs.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware logs end-to-end request duration and response size.
func loggingMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := &statusWriter{
				ResponseWriter: w,
				status:         0,
			}

			next.ServeHTTP(sw, r)

			log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.RequestURI(),
				"status": sw.status,
				"bytes":  sw.bytes,
				"dur_ms": time.Since(start).Milliseconds(),
				"req_id": obs.RequestID(r.Context()),
			}).Info("request handled")
		})
	}
}
