// Package broadcast fans an admin message out to every registered user, one
// fixed-size page per run. Paging keeps a single run bounded; the caller
// chains runs by re-invoking with the reported next offset.
package broadcast

import (
	"context"
	"time"

	"fidelbot/internal/logger"
	"log/slog"
)

// UserSource yields one page of recipient ids.
type UserSource interface {
	ListIDs(ctx context.Context, limit, offset int) ([]int64, error)
}

// SendFunc delivers the broadcast payload to a single recipient. A non-nil
// error counts the recipient as failed without stopping the run.
type SendFunc func(ctx context.Context, userID int64) error

// Report summarizes one page of fan-out.
type Report struct {
	Sent       int
	Failed     int
	NextOffset int
	Done       bool
}

// Coordinator walks the user registry in pages and throttles delivery in
// small batches so a large page does not trip Telegram's rate limits.
type Coordinator struct {
	users     UserSource
	pageSize  int
	batchSize int
	pause     time.Duration
	sleep     func(ctx context.Context, d time.Duration)
}

// New builds a coordinator. Non-positive tuning values fall back to the
// defaults of 500 recipients per page, pausing for a second every 30 sends.
func New(users UserSource, pageSize, batchSize int, pause time.Duration) *Coordinator {
	if pageSize <= 0 {
		pageSize = 500
	}
	if batchSize <= 0 {
		batchSize = 30
	}
	if pause <= 0 {
		pause = time.Second
	}
	return &Coordinator{
		users:     users,
		pageSize:  pageSize,
		batchSize: batchSize,
		pause:     pause,
		sleep:     sleepCtx,
	}
}

// Run delivers to the page of users starting at offset. Per-recipient
// failures are counted, not propagated; only a registry read error or a
// cancelled context aborts the run.
func (c *Coordinator) Run(ctx context.Context, offset int, send SendFunc) (Report, error) {
	start := time.Now()
	ids, err := c.users.ListIDs(ctx, c.pageSize, offset)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		NextOffset: offset + len(ids),
		Done:       len(ids) < c.pageSize,
	}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := send(ctx, id); err != nil {
			rep.Failed++
			logger.SVCBroadcast.Warn("delivery failed",
				slog.String("event", "broadcast.send"),
				slog.Int64("user_id", id),
				slog.String("err", err.Error()),
			)
		} else {
			rep.Sent++
		}
		if (i+1)%c.batchSize == 0 && i+1 < len(ids) {
			c.sleep(ctx, c.pause)
		}
	}

	logger.SVCBroadcast.Info("page delivered",
		slog.String("event", "broadcast.page"),
		slog.Int("offset", offset),
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Bool("done", rep.Done),
		slog.Duration("duration", time.Since(start)),
	)
	return rep, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
