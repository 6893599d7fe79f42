package router

import (
	"time"

	"fidelbot/internal/nav"
	tg "fidelbot/internal/telegram"
	"fidelbot/internal/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that decodes the pressed button's token
// and routes by its kind. Kind dispatch replaces naive prefix matching:
// "back_to_grade_9" reaches the back-to-subjects handler, never the plain
// grade handler a "grade_" prefix scan would pick.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		kind, _, err := nav.Decode(cb.Data)
		if err != nil {
			return handleWithSummary(c, "callback.malformed", start, func() error {
				return fallbackHandler(reg, opts)(c)
			}, slog.String("payload", cb.Data))
		}

		name := "callback." + normalizeHandlerName(string(kind))
		extras := []slog.Attr{slog.String("cb_key", string(kind))}

		cbHandler, ok := reg.GetCallback(kind)
		if !ok || cbHandler == nil {
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, func() error {
				return fallbackHandler(reg, opts)(c)
			}, extras...)
		}

		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

func fallbackHandler(reg *tg.Registry, opts CallbackOptions) tele.HandlerFunc {
	if fb := reg.CallbackNotFound(); fb != nil {
		return fb
	}
	if opts.NotFound != nil {
		return opts.NotFound
	}
	return func(c tele.Context) error { return c.Respond() }
}
