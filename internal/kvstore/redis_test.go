package kvstore

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "temp_score_42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "temp_score_42", "3"))

	val, ok, err := store.Get(ctx, "temp_score_42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", val)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "quiz_grade_9_phys_1")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = store.Put(context.Background(), "temp_score_1", "0")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "quiz_grade_9_phys_3", QuizKey("grade_9_phys_3"))
	assert.Equal(t, "temp_score_123", TallyKey(123))
}
