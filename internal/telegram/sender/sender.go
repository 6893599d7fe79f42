// Package sender executes outbound Telegram calls synchronously, in the
// order handlers issue them, with classified failure logging. Ordering
// matters for the quiz flow: an edit racing a fresh send would garble the
// conversation, so there is no queue and no worker pool here.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"fidelbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Sender wraps outbound calls with logging and failure accounting.
type Sender struct {
	errs atomic.Uint64
}

// New returns a ready sender.
func New() *Sender {
	return &Sender{}
}

// Do runs one outbound call inline and logs the outcome. The returned error
// is the run's own error, with the bot token scrubbed from any log output.
func (s *Sender) Do(ctx context.Context, action string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	err := run()
	elapsed := time.Since(start)

	if err != nil {
		s.errs.Add(1)
		attrs := append(callAttrs(ctx, action),
			slog.String("error", SanitizeErrorMessage(err)),
			slog.String("error_kind", ClassifyError(err)),
			slog.Int64("duration_ms", logger.RoundMS(elapsed).Milliseconds()),
		)
		logger.Error(ctx, "tg.sender", "send.fail", attrs...)
		return err
	}

	if logger.ShouldSampleDebug() {
		attrs := append(callAttrs(ctx, action),
			slog.Int64("duration_ms", logger.RoundMS(elapsed).Milliseconds()),
		)
		logger.Debug(ctx, "tg.sender", "send.success", attrs...)
	}
	return nil
}

// ErrorCount returns the number of failed calls since start.
func (s *Sender) ErrorCount() uint64 {
	return s.errs.Load()
}

func callAttrs(ctx context.Context, action string) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", action)}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if updateID := logger.UpdateIDFrom(ctx); updateID != 0 {
		attrs = append(attrs, slog.Int("update_id", updateID))
	}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	if userID := logger.UserIDFrom(ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	return attrs
}

// ClassifyError buckets an outbound failure for log aggregation.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			if kind := ClassifyError(opErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := ClassifyError(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	status := HTTPStatusFromError(err)
	switch {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}

	return "unknown"
}

// SanitizeErrorMessage prevents accidental leakage of Telegram bot tokens
// in logs.
func SanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		return ""
	}
	return tokenRe.ReplaceAllString(msg, "bot<redacted>")
}

// HTTPStatusFromError extracts an HTTP status code from a Telebot API error.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}

	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	msg := err.Error()
	if msg == "" {
		return 0
	}

	lastOpen := strings.LastIndex(msg, "(")
	lastClose := strings.LastIndex(msg, ")")
	if lastOpen >= 0 && lastClose > lastOpen+1 {
		codeStr := strings.TrimSpace(msg[lastOpen+1 : lastClose])
		if code, convErr := strconv.Atoi(codeStr); convErr == nil {
			return code
		}
	}

	return 0
}

// IsBlockedByUser reports whether the failure means the recipient blocked
// the bot or deactivated their account. Broadcast counts these as failed
// deliveries without retrying.
func IsBlockedByUser(err error) bool {
	if err == nil {
		return false
	}
	status := HTTPStatusFromError(err)
	return status == http.StatusForbidden
}
