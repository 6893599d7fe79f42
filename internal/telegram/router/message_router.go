package router

import (
	"strings"
	"time"

	tg "fidelbot/internal/telegram"
	"fidelbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoute builds the handler for plain text updates: exact command match
// first, then prefix commands ("/broadcast_500", "/reply_123"), then the
// registry's text fallback.
func TextRoute(reg *tg.Registry, opts TextOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(commandWord(text)); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, func() error {
					return cmd.Handler(c)
				})
			}
			if prefix, ph, suffix, ok := reg.LookupPrefix(text); ok {
				name := normalizeHandlerName(prefix) + "prefix"
				return handleWithSummary(c, name, start, func() error {
					return ph(c, suffix)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// commandWord isolates the command itself from a slash message so that
// deep-link starts ("/start ref_123") and group mentions ("/start@SomeBot")
// still hit the exact command lookup. Plain text passes through untouched.
func commandWord(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return word
}

// PhotoRoute routes photo messages through the registry's text fallback so
// photo feedback reaches the admin relay like any other message.
func PhotoRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback_photo", start, func() error {
					return fb(c)
				})
			}
		}
		logHandlerSummary(c, "fallback_photo", start, "skip", nil)
		return nil
	}
	return tg.Route{
		Endpoint: tele.OnPhoto,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
