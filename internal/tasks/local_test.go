package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalScheduler(t *testing.T) {
	t.Run("Runs Handler After Delay", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		got := make(chan string, 1)
		s.Handle("echo", func(_ context.Context, payload []byte) error {
			got <- string(payload)
			return nil
		})

		start := time.Now()
		require.NoError(t, s.Schedule(context.Background(), "echo", []byte("hi"), 20*time.Millisecond))
		s.Wait()

		assert.Equal(t, "hi", <-got)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("Schedule Does Not Block", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		s.Handle("slow", func(context.Context, []byte) error { return nil })

		start := time.Now()
		require.NoError(t, s.Schedule(context.Background(), "slow", nil, 200*time.Millisecond))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
		s.Wait()
	})

	t.Run("Unknown Type", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		err := s.Schedule(context.Background(), "missing", nil, 0)
		assert.ErrorIs(t, err, ErrNoHandler)
	})

	t.Run("Handler Error Is Contained", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		var calls atomic.Int32
		s.Handle("fail", func(context.Context, []byte) error {
			calls.Add(1)
			return errors.New("boom")
		})
		require.NoError(t, s.Schedule(context.Background(), "fail", nil, 0))
		s.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Handler Gets Deadline", func(t *testing.T) {
		s := NewLocalScheduler(50 * time.Millisecond)
		hasDeadline := make(chan bool, 1)
		s.Handle("deadline", func(ctx context.Context, _ []byte) error {
			_, ok := ctx.Deadline()
			hasDeadline <- ok
			return nil
		})
		require.NoError(t, s.Schedule(context.Background(), "deadline", nil, 0))
		s.Wait()
		assert.True(t, <-hasDeadline)
	})

	t.Run("Chained Tasks Are Awaited", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		var second atomic.Bool
		s.Handle("second", func(context.Context, []byte) error {
			second.Store(true)
			return nil
		})
		s.Handle("first", func(ctx context.Context, _ []byte) error {
			return s.Schedule(ctx, "second", nil, 0)
		})
		require.NoError(t, s.Schedule(context.Background(), "first", nil, 0))
		s.Wait()
		assert.True(t, second.Load())
	})

	t.Run("Shutdown Drains Pending", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		var ran atomic.Bool
		s.Handle("job", func(context.Context, []byte) error {
			ran.Store(true)
			return nil
		})
		require.NoError(t, s.Schedule(context.Background(), "job", nil, 10*time.Millisecond))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Shutdown(ctx))
		assert.True(t, ran.Load())

		assert.ErrorIs(t, s.Schedule(context.Background(), "job", nil, 0), ErrSchedulerClosed)
	})

	t.Run("Shutdown Deadline Drops Pending", func(t *testing.T) {
		s := NewLocalScheduler(time.Second)
		var ran atomic.Bool
		s.Handle("job", func(context.Context, []byte) error {
			ran.Store(true)
			return nil
		})
		require.NoError(t, s.Schedule(context.Background(), "job", nil, time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := s.Shutdown(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, ran.Load())
	})
}

func TestScheduleJSON(t *testing.T) {
	s := NewLocalScheduler(time.Second)
	got := make(chan string, 1)
	s.Handle("json", func(_ context.Context, payload []byte) error {
		got <- string(payload)
		return nil
	})

	require.NoError(t, ScheduleJSON(context.Background(), s, "json", map[string]string{"id": "abc"}, 0))
	s.Wait()
	assert.JSONEq(t, `{"id":"abc"}`, <-got)
}
