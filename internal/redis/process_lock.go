package redisclient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProcessLocker is the single-node Locker used with the memory backend and
// when Redis is disabled. Each interviewer gets a one-slot semaphore.
type ProcessLocker struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[uuid.UUID]*processLock
}

type processLock struct {
	sem  chan struct{}
	refs int
}

func NewProcessLocker(wait time.Duration) *ProcessLocker {
	return &ProcessLocker{
		wait:  wait,
		locks: make(map[uuid.UUID]*processLock),
	}
}

func (l *ProcessLocker) WithInterviewerLock(ctx context.Context, interviewerID uuid.UUID, fn func(ctx context.Context) error) error {
	lk := l.ref(interviewerID)
	defer l.unref(interviewerID)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case lk.sem <- struct{}{}:
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrLockNotAcquired
	}
	defer func() { <-lk.sem }()

	return fn(ctx)
}

func (l *ProcessLocker) ref(id uuid.UUID) *processLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[id]
	if !ok {
		lk = &processLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	return lk
}

func (l *ProcessLocker) unref(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk := l.locks[id]
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}
