package redisclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProcessLockerSerializesPerInterviewer(t *testing.T) {
	locker := NewProcessLocker(time.Second)
	interviewer := uuid.New()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithInterviewerLock(context.Background(), interviewer, func(context.Context) error {
				n := inside.Add(1)
				if n > maxSeen.Load() {
					maxSeen.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Empty(t, locker.locks)
}

func TestProcessLockerIndependentInterviewers(t *testing.T) {
	locker := NewProcessLocker(time.Second)
	a, b := uuid.New(), uuid.New()

	err := locker.WithInterviewerLock(context.Background(), a, func(ctx context.Context) error {
		return locker.WithInterviewerLock(ctx, b, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
}

func TestProcessLockerWaitTimeout(t *testing.T) {
	locker := NewProcessLocker(20 * time.Millisecond)
	interviewer := uuid.New()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithInterviewerLock(context.Background(), interviewer, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	called := false
	err := locker.WithInterviewerLock(context.Background(), interviewer, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, called)
}

func TestProcessLockerPropagatesError(t *testing.T) {
	locker := NewProcessLocker(time.Second)
	boom := errors.New("boom")

	err := locker.WithInterviewerLock(context.Background(), uuid.New(), func(context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestRedisLockerDegradesWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisInterviewerLocker(client, time.Second, 100*time.Millisecond, zaptest.NewLogger(t))
	interviewer := uuid.New()

	// Enough calls to trip the breaker and keep going while it is open.
	for i := 0; i < 5; i++ {
		calls := 0
		err := locker.WithInterviewerLock(context.Background(), interviewer, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	}
}

func TestLockKey(t *testing.T) {
	id := uuid.MustParse("7f0c4a3e-1c52-4a9e-9c1a-0c4c2f6b8d11")
	assert.Equal(t, "lock:interviewer:7f0c4a3e-1c52-4a9e-9c1a-0c4c2f6b8d11", lockKey(id))
}
