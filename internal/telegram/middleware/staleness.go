package middleware

import (
	"time"

	"fidelbot/internal/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// StalenessOptions tunes the stale-update guard.
type StalenessOptions struct {
	Window time.Duration
	// Now is replaceable in tests; defaults to time.Now.
	Now func() time.Time
}

// StalenessMiddleware drops message updates whose own timestamp is older
// than the freshness window. Telegram redelivers updates the webhook was
// slow to acknowledge; re-processing them would double-send responses, so
// a stale update is acknowledged silently with no outbound call. Callback
// updates carry no timestamp of their own and pass through.
func StalenessMiddleware(opts StalenessOptions) tele.MiddlewareFunc {
	window := opts.Window
	if window <= 0 {
		window = 30 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			upd := c.Update()
			if upd.Callback != nil || upd.Message == nil {
				return next(c)
			}
			age := now().Sub(upd.Message.Time())
			if age <= window {
				return next(c)
			}
			logger.TG.Debug("stale update dropped",
				slog.String("event", "update.stale"),
				slog.Int("update_id", upd.ID),
				slog.Int64("age_seconds", int64(age/time.Second)),
			)
			return nil
		}
	}
}
