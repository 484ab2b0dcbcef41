package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRedisCounter(t *testing.T, now time.Time) (*RedisCounter, *mock.Client, string) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	counter := NewRedisCounter(client, "care_tasks_rate")
	counter.now = func() time.Time { return now }

	key := fmt.Sprintf("care_tasks_rate:ip:192.0.2.1:%d", now.Truncate(time.Minute).Unix())
	return counter, client, key
}

func TestRedisCounter_FirstHitSetsExpiry(t *testing.T) {
	ctx := context.Background()
	counter, client, key := newTestRedisCounter(t, time.Date(2026, 3, 2, 10, 0, 42, 0, time.UTC))

	gomock.InOrder(
		client.EXPECT().Do(ctx, mock.Match("INCR", key)).Return(mock.Result(mock.RedisInt64(1))),
		client.EXPECT().Do(ctx, mock.Match("PEXPIRE", key, "60000")).Return(mock.Result(mock.RedisInt64(1))),
	)

	n, err := counter.Hit(ctx, "ip:192.0.2.1", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRedisCounter_LaterHitsOnlyIncrement(t *testing.T) {
	ctx := context.Background()
	counter, client, key := newTestRedisCounter(t, time.Date(2026, 3, 2, 10, 0, 59, 0, time.UTC))

	client.EXPECT().Do(ctx, mock.Match("INCR", key)).Return(mock.Result(mock.RedisInt64(7)))

	n, err := counter.Hit(ctx, "ip:192.0.2.1", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestRedisCounter_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	counter, client, key := newTestRedisCounter(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	down := errors.New("connection refused")

	client.EXPECT().Do(ctx, mock.Match("INCR", key)).Return(mock.ErrorResult(down))
	_, err := counter.Hit(ctx, "ip:192.0.2.1", time.Minute)
	assert.ErrorIs(t, err, down)

	client.EXPECT().Do(ctx, mock.Match("INCR", key)).Return(mock.Result(mock.RedisInt64(1)))
	client.EXPECT().Do(ctx, mock.Match("PEXPIRE", key, "60000")).Return(mock.ErrorResult(down))
	_, err = counter.Hit(ctx, "ip:192.0.2.1", time.Minute)
	assert.ErrorIs(t, err, down)
}
