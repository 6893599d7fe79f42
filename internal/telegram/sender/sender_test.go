package sender

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestSanitizeErrorMessageRedactsBotToken(t *testing.T) {
	err := fmt.Errorf("telegram: Post \"https://api.telegram.org/bot1234567:AAH-abc_DEF123/sendMessage\": EOF")
	msg := SanitizeErrorMessage(err)
	assert.NotContains(t, msg, "1234567:AAH")
	assert.Contains(t, msg, "bot<redacted>/sendMessage")
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"dns", &net.DNSError{Err: "no such host"}, "dns"},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, "dial"},
		{"url timeout", &url.Error{Op: "Post", Err: context.DeadlineExceeded}, "timeout"},
		{"api 500", &tele.Error{Code: 502, Description: "bad gateway"}, "http_5xx"},
		{"api 403", &tele.Error{Code: 403, Description: "bot was blocked by the user"}, "http_4xx"},
		{"unknown", errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestHTTPStatusFromErrorParsesTrailingCode(t *testing.T) {
	err := errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	assert.Equal(t, 403, HTTPStatusFromError(err))
	assert.True(t, IsBlockedByUser(err))
	assert.False(t, IsBlockedByUser(errors.New("telegram: Bad Request (400)")))
}

func TestDoCountsFailures(t *testing.T) {
	s := New()
	require.NoError(t, s.Do(context.Background(), "send.text", func() error { return nil }))
	assert.Zero(t, s.ErrorCount())

	err := s.Do(context.Background(), "send.text", func() error {
		return errors.New("telegram: Gateway Timeout (504)")
	})
	require.Error(t, err)
	assert.Equal(t, uint64(1), s.ErrorCount())
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("plain")))
	assert.True(t, ShouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}))
}
