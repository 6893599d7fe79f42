package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fidelbot/internal/logger"
	"fidelbot/internal/telegram/format"
	tghelpers "fidelbot/internal/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

func (a *App) isAdmin(c tele.Context) bool {
	u := c.Sender()
	return u != nil && u.ID == a.adminID
}

func (a *App) adminChat() *tele.User {
	return &tele.User{ID: a.adminID}
}

// handleFeedback relays any plain message from a regular user to the admin
// with a /reply_<id> hint, then confirms receipt.
func (a *App) handleFeedback(c tele.Context) error {
	u := c.Sender()
	if u == nil {
		return nil
	}
	ctx := a.quizCtx(c)
	if err := a.users.Ensure(ctx, u.ID); err != nil {
		logger.Warn(ctx, "bot", "user.register.fail", slog.String("err", err.Error()))
	}

	if a.isAdmin(c) {
		return tghelpers.SendText(c, "Reply to feedback with /reply_<user_id> <text>, broadcast by replying /broadcast to a message.")
	}

	b := c.Bot()
	header := fmt.Sprintf("📬 *Feedback from %s* (`%d`)\nAnswer with /reply\\_%d <text>",
		format.EscapeMarkdown(displayName(u.FirstName, u.LastName)), u.ID, u.ID)
	err := a.sender.Do(ctx, "feedback.relay", func() error {
		if _, err := b.Send(a.adminChat(), header, &tele.SendOptions{ParseMode: tele.ModeMarkdown}); err != nil {
			return err
		}
		_, err := b.Forward(a.adminChat(), c.Message())
		return err
	})
	if err != nil {
		return err
	}

	return tghelpers.Reply(c, "✅ Thanks! Your message was sent to the team.")
}

// handleReply delivers "/reply_<id> <text>" to the user. Admin gating
// happens at registration.
func (a *App) handleReply(c tele.Context, suffix string) error {
	idPart, text, _ := strings.Cut(strings.TrimSpace(suffix), " ")
	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || userID == 0 {
		return tghelpers.Reply(c, "Usage: /reply_<user_id> <text>")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return tghelpers.Reply(c, "Usage: /reply_<user_id> <text>")
	}

	ctx := a.quizCtx(c)
	b := c.Bot()
	err = a.sender.Do(ctx, "reply.relay", func() error {
		_, sendErr := b.Send(&tele.User{ID: userID},
			"📨 *Reply from the team:*\n\n"+text,
			&tele.SendOptions{ParseMode: tele.ModeMarkdown})
		return sendErr
	})
	if err != nil {
		return tghelpers.Reply(c, fmt.Sprintf("❌ Could not deliver to %d.", userID))
	}
	return tghelpers.Reply(c, "✅ Delivered.")
}

// handleBroadcast starts a fan-out of the replied-to message at offset 0.
func (a *App) handleBroadcast(c tele.Context) error {
	return a.runBroadcast(c, 0)
}

// handleBroadcastContinue resumes a fan-out: "/broadcast_<offset>". Admin
// gating happens at registration.
func (a *App) handleBroadcastContinue(c tele.Context, suffix string) error {
	offset, err := strconv.Atoi(strings.TrimSpace(suffix))
	if err != nil || offset < 0 {
		return tghelpers.Reply(c, "Usage: /broadcast_<offset>, replying to the message to broadcast.")
	}
	return a.runBroadcast(c, offset)
}

// runBroadcast copies the replied-to message (text or photo, no forwarding
// header) to one page of users and reports the outcome with a continuation
// command when more pages remain.
func (a *App) runBroadcast(c tele.Context, offset int) error {
	src := c.Message().ReplyTo
	if src == nil {
		return tghelpers.Reply(c, "Reply to the message you want to broadcast with /broadcast.")
	}

	ctx := a.quizCtx(c)
	b := c.Bot()
	rep, err := a.bcast.Run(ctx, offset, func(_ context.Context, userID int64) error {
		_, copyErr := b.Copy(&tele.User{ID: userID}, src)
		return copyErr
	})
	if err != nil {
		return err
	}

	report := fmt.Sprintf("📣 Broadcast page done.\nSent: %d\nFailed: %d", rep.Sent, rep.Failed)
	if rep.Done {
		report += "\nAll users reached."
	} else {
		report += fmt.Sprintf("\nContinue: reply /broadcast_%d to the same message.", rep.NextOffset)
	}
	return tghelpers.Reply(c, report)
}
