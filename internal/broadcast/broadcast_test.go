package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	ids []int64
}

func (s sliceSource) ListIDs(_ context.Context, limit, offset int) ([]int64, error) {
	if offset >= len(s.ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.ids) {
		end = len(s.ids)
	}
	return s.ids[offset:end], nil
}

func idRange(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func silentCoordinator(users UserSource, pageSize, batchSize int) (*Coordinator, *int) {
	c := New(users, pageSize, batchSize, time.Second)
	pauses := 0
	c.sleep = func(context.Context, time.Duration) { pauses++ }
	return c, &pauses
}

func TestRunStopsAtPageBoundary(t *testing.T) {
	c, _ := silentCoordinator(sliceSource{ids: idRange(520)}, 500, 30)

	var delivered []int64
	rep, err := c.Run(context.Background(), 0, func(_ context.Context, id int64) error {
		delivered = append(delivered, id)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, delivered, 500)
	assert.Equal(t, int64(500), delivered[499])
	assert.Equal(t, 500, rep.Sent)
	assert.Equal(t, 500, rep.NextOffset)
	assert.False(t, rep.Done)
}

func TestContinuationRunFinishesRemainder(t *testing.T) {
	c, _ := silentCoordinator(sliceSource{ids: idRange(520)}, 500, 30)

	rep, err := c.Run(context.Background(), 500, func(_ context.Context, id int64) error {
		assert.Greater(t, id, int64(500))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 20, rep.Sent)
	assert.Equal(t, 520, rep.NextOffset)
	assert.True(t, rep.Done)
}

func TestPerRecipientFailuresAreCountedNotFatal(t *testing.T) {
	c, _ := silentCoordinator(sliceSource{ids: idRange(10)}, 500, 30)

	rep, err := c.Run(context.Background(), 0, func(_ context.Context, id int64) error {
		if id%3 == 0 {
			return errors.New("forbidden: bot was blocked by the user")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 7, rep.Sent)
	assert.Equal(t, 3, rep.Failed)
	assert.True(t, rep.Done)
}

func TestPausesBetweenBatches(t *testing.T) {
	c, pauses := silentCoordinator(sliceSource{ids: idRange(90)}, 500, 30)

	_, err := c.Run(context.Background(), 0, func(context.Context, int64) error { return nil })
	require.NoError(t, err)

	// 90 sends in batches of 30: pauses after send 30 and 60, none after the last.
	assert.Equal(t, 2, *pauses)
}

func TestCancelledContextAbortsRun(t *testing.T) {
	c, _ := silentCoordinator(sliceSource{ids: idRange(50)}, 500, 30)

	ctx, cancel := context.WithCancel(context.Background())
	sent := 0
	_, err := c.Run(ctx, 0, func(context.Context, int64) error {
		sent++
		if sent == 5 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, sent)
}

func TestEmptyPageIsDone(t *testing.T) {
	c, _ := silentCoordinator(sliceSource{ids: idRange(10)}, 500, 30)

	rep, err := c.Run(context.Background(), 10, func(context.Context, int64) error {
		t.Fatal("unexpected delivery")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, rep.Done)
	assert.Equal(t, 10, rep.NextOffset)
	assert.Zero(t, rep.Sent)
}
