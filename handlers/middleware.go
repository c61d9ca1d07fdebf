package handlers

import (
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotelines/logger"
)

// RequestLogger attaches request fields to the request context, so handler
// logs carry them, and logs each request once it completes.
func RequestLogger(log *logger.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()

		ctx := log.WithFields(e.Request.Context(), map[string]any{
			"method": e.Request.Method,
			"path":   e.Request.URL.Path,
		})
		e.Request = e.Request.WithContext(ctx)

		err := e.Next()

		ctx = log.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			log.Error(ctx, "request failed", err)
			return err
		}
		log.Debug(ctx, "request handled")
		return nil
	}
}
