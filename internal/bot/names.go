package bot

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

type senderNameKey struct{}

// withSenderName caches the inbound sender's display name on the context so
// score merges triggered by that same update need no extra API call.
func withSenderName(ctx context.Context, name string) context.Context {
	name = strings.TrimSpace(name)
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, senderNameKey{}, name)
}

// ChatNames resolves display names, preferring the name already carried by
// the update and falling back to a chat lookup.
type ChatNames struct {
	bot atomic.Pointer[tele.Bot]
}

// SetBot wires the live bot once the runtime is up.
func (n *ChatNames) SetBot(b *tele.Bot) {
	n.bot.Store(b)
}

// FullName implements the quiz engine's name source.
func (n *ChatNames) FullName(ctx context.Context, userID int64) (string, error) {
	if v, ok := ctx.Value(senderNameKey{}).(string); ok && v != "" {
		return v, nil
	}
	b := n.bot.Load()
	if b == nil {
		return "", errors.New("bot not started")
	}
	chat, err := b.ChatByID(userID)
	if err != nil {
		return "", err
	}
	return displayName(chat.FirstName, chat.LastName), nil
}

func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
