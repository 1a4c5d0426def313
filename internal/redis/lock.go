package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	ErrLockNotAcquired = errors.New("interviewer lock not acquired")
)

// Locker serializes booking and cancellation per interviewer.
type Locker interface {
	WithInterviewerLock(ctx context.Context, interviewerID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisInterviewerLocker struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	breaker *gobreaker.CircuitBreaker[any]
	log     *zap.Logger
}

// NewRedisInterviewerLocker creates a locker that uses a per interviewer
// Redis key. Acquisition polls with backoff for up to wait. When Redis is
// failing the breaker opens and fn runs unlocked, relying on the store's
// own atomic reserve.
func NewRedisInterviewerLocker(client *redis.Client, ttl, wait time.Duration, log *zap.Logger) Locker {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("lock")

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-lock",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrLockNotAcquired) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	return &redisInterviewerLocker{
		client:  client,
		ttl:     ttl,
		wait:    wait,
		breaker: breaker,
		log:     log,
	}
}

func lockKey(interviewerID uuid.UUID) string {
	return fmt.Sprintf("lock:interviewer:%s", interviewerID.String())
}

func (l *redisInterviewerLocker) WithInterviewerLock(ctx context.Context, interviewerID uuid.UUID, fn func(ctx context.Context) error) error {
	key := lockKey(interviewerID)
	token := uuid.NewString()

	_, err := l.breaker.Execute(func() (any, error) {
		return nil, l.acquire(ctx, key, token)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrLockNotAcquired):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("acquire interviewer lock: %w", err)
	default:
		// Redis unavailable or breaker open.
		l.log.Warn("running without interviewer lock",
			zap.Stringer("interviewer_id", interviewerID),
			zap.Error(err),
		)
		return fn(ctx)
	}

	defer func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.release(rctx, key, token); err != nil {
			l.log.Warn("release interviewer lock", zap.String("key", key), zap.Error(err))
		}
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *redisInterviewerLocker) acquire(ctx context.Context, key, token string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	backoff := retry.WithCappedDuration(200*time.Millisecond, retry.NewExponential(20*time.Millisecond))
	backoff = retry.WithMaxDuration(l.wait, backoff)

	err := retry.Do(waitCtx, backoff, func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire interviewer lock: %w", err)
		}
		if !ok {
			return retry.RetryableError(ErrLockNotAcquired)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return ErrLockNotAcquired
	}
	return err
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisInterviewerLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release interviewer lock: %w", err)
	}
	return nil
}
