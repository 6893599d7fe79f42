package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements just enough of tele.Context for the guard.
type fakeContext struct {
	tele.Context
	update tele.Update
	sent   int
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Send(interface{}, ...interface{}) error {
	f.sent++
	return nil
}

func messageUpdate(sentAt time.Time) tele.Update {
	return tele.Update{ID: 42, Message: &tele.Message{Unixtime: sentAt.Unix()}}
}

func TestStalenessDropsOldMessages(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mw := StalenessMiddleware(StalenessOptions{
		Window: 30 * time.Second,
		Now:    func() time.Time { return now },
	})

	called := false
	h := mw(func(c tele.Context) error {
		called = true
		return c.Send("hello")
	})

	c := &fakeContext{update: messageUpdate(now.Add(-31 * time.Second))}
	assert.NoError(t, h(c))
	assert.False(t, called, "stale update must not reach the handler")
	assert.Zero(t, c.sent, "stale update must produce no outbound call")
}

func TestStalenessPassesFreshMessages(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mw := StalenessMiddleware(StalenessOptions{
		Window: 30 * time.Second,
		Now:    func() time.Time { return now },
	})

	called := false
	h := mw(func(tele.Context) error {
		called = true
		return nil
	})

	c := &fakeContext{update: messageUpdate(now.Add(-29 * time.Second))}
	assert.NoError(t, h(c))
	assert.True(t, called)
}

func TestStalenessIgnoresCallbacks(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	mw := StalenessMiddleware(StalenessOptions{
		Window: 30 * time.Second,
		Now:    func() time.Time { return now },
	})

	called := false
	h := mw(func(tele.Context) error {
		called = true
		return nil
	})

	// The callback references a bot message far older than the window; the
	// quiz session itself has no expiry.
	old := &tele.Message{Unixtime: now.Add(-time.Hour).Unix()}
	c := &fakeContext{update: tele.Update{ID: 43, Callback: &tele.Callback{Message: old}}}
	assert.NoError(t, h(c))
	assert.True(t, called)
}
