package obs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type ctxKey string

// RequestIDKey carries the correlation id assigned by the HTTP middleware.
const RequestIDKey ctxKey = "req_id"

// RequestID returns the correlation id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithRequestID returns a child context carrying the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Time measures an operation and logs its duration on completion, tagging the
// entry with the request id when one is present.
//
// Usage: defer obs.Time(ctx, "op.Name")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	fields := logrus.Fields{"op": name}
	if id := RequestID(ctx); id != "" {
		fields["req_id"] = id
	}

	return func(errp *error) {
		entry := logrus.WithFields(fields).WithField("dur_ms", time.Since(start).Milliseconds())

		if errp != nil && *errp != nil {
			entry.WithError(*errp).Warn("operation failed")
			return
		}
		entry.Debug("operation completed")
	}
}
