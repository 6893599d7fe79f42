package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "fidelbot/internal/telegram"

	tele "gopkg.in/telebot.v4"
)

// textContext implements just enough of tele.Context to drive the text route.
type textContext struct {
	tele.Context
	text  string
	store map[string]any
}

func newTextContext(text string) *textContext {
	return &textContext{text: text, store: make(map[string]any)}
}

func (f *textContext) Update() tele.Update {
	return tele.Update{ID: 7, Message: &tele.Message{Text: f.text}}
}

func (f *textContext) Text() string       { return f.text }
func (f *textContext) Sender() *tele.User { return &tele.User{ID: 99} }
func (f *textContext) Chat() *tele.Chat   { return &tele.Chat{ID: 99} }

func (f *textContext) Set(key string, val any) { f.store[key] = val }
func (f *textContext) Get(key string) any      { return f.store[key] }

func TestTextRouteStartWithDeepLinkPayload(t *testing.T) {
	reg := tg.NewRegistry()
	var started, relayed bool
	reg.RegisterCommand("/start", tg.Command{
		Handler:     func(tele.Context) error { started = true; return nil },
		Description: "Open the main menu",
	})
	reg.SetTextFallback(func(tele.Context) error { relayed = true; return nil })

	route := TextRoute(reg, TextOptions{})
	require.NoError(t, route.Handler(newTextContext("/start ref_12345")))

	assert.True(t, started, "deep-link start must open the menu")
	assert.False(t, relayed, "deep-link start must not fall into the feedback relay")
}

func TestTextRoutePrefixKeepsFullSuffix(t *testing.T) {
	reg := tg.NewRegistry()
	var gotSuffix string
	reg.RegisterPrefixCommand("/reply_", func(_ tele.Context, suffix string) error {
		gotSuffix = suffix
		return nil
	})

	route := TextRoute(reg, TextOptions{})
	require.NoError(t, route.Handler(newTextContext("/reply_42 hello there")))

	assert.Equal(t, "42 hello there", gotSuffix)
}

func TestTextRoutePlainTextFallsBack(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", tg.Command{
		Handler:     func(tele.Context) error { return nil },
		Description: "Open the main menu",
	})
	var relayed bool
	reg.SetTextFallback(func(tele.Context) error { relayed = true; return nil })

	route := TextRoute(reg, TextOptions{})
	require.NoError(t, route.Handler(newTextContext("great quiz, thanks!")))

	assert.True(t, relayed)
}

func TestCommandWord(t *testing.T) {
	cases := map[string]string{
		"/start ref_12345":     "/start",
		"/start@SomeBot ref_1": "/start",
		"/broadcast":           "/broadcast",
		"/reply_42 hello":      "/reply_42",
		"great quiz, thanks!":  "great quiz, thanks!",
	}
	for in, want := range cases {
		assert.Equal(t, want, commandWord(in), in)
	}
}
