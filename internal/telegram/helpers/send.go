package helpers

import (
	"sync/atomic"

	"fidelbot/internal/telegram/keyboard"
	"fidelbot/internal/telegram/sender"
	"fidelbot/internal/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

var globalSender atomic.Pointer[sender.Sender]

// SetSender wires the synchronous sender used by helper functions.
func SetSender(s *sender.Sender) {
	globalSender.Store(s)
}

func doSend(c tele.Context, action string, run func() error) error {
	s := globalSender.Load()
	if s == nil {
		return run()
	}
	return s.Do(BuildContext(c), action, run)
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return doSend(c, "send.text", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
}

// EditOrSendMD tries to edit the current message (Markdown) or sends a new
// one if edit fails. Callback-driven navigation edits in place so a quiz
// session stays a single evolving message.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return doSend(c, "edit_or_send.md", func() error {
		return c.EditOrSend(text, &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm})
	})
}

// Respond acknowledges a callback, optionally with an alert popup.
func Respond(c tele.Context, alert string) error {
	return doSend(c, "callback.respond", func() error {
		if alert == "" {
			return c.Respond()
		}
		return c.Respond(&tele.CallbackResponse{Text: alert, ShowAlert: true})
	})
}

// Reply answers the current message as a threaded reply.
func Reply(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return doSend(c, "reply.text", func() error {
		if sendOpts != nil {
			return c.Reply(text, sendOpts)
		}
		return c.Reply(text)
	})
}

// DeliverRender routes a render instruction: alerts become callback popups,
// everything else becomes an in-place edit (or a fresh message outside
// callback context).
func DeliverRender(c tele.Context, r ui.Render) error {
	if r.Alert != "" {
		return Respond(c, r.Alert)
	}
	if c.Callback() != nil {
		_ = Respond(c, "")
	}
	return EditOrSendMD(c, r.Text, keyboard.FromRender(r))
}
