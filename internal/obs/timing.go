// Package obs holds small observability helpers shared across packages.
package obs

import (
	"context"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Time logs the duration of an operation named op. Use it as
//
//	defer obs.Time(ctx, "catalog.fetch")(&err)
//
// so the returned error, if any, is attached to the log line.
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()
	reqID := chimw.GetReqID(ctx)

	return func(errp *error) {
		ev := log.Debug()
		if errp != nil && *errp != nil {
			ev = log.Warn().Err(*errp)
		}
		if reqID != "" {
			ev = ev.Str("req_id", reqID)
		}
		ev.Str("op", op).Dur("dur", time.Since(start)).Msg("timed")
	}
}
