package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const completionRunTimeout = 20 * time.Second

// CompletionWorker periodically marks elapsed interviews Completed.
type CompletionWorker struct {
	coord    *Coordinator
	interval time.Duration
	log      *zap.Logger
}

func NewCompletionWorker(coord *Coordinator, interval time.Duration, log *zap.Logger) *CompletionWorker {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &CompletionWorker{
		coord:    coord,
		interval: interval,
		log:      log.Named("completion"),
	}
}

// Run executes once immediately and then on every tick until ctx is done.
func (w *CompletionWorker) Run(ctx context.Context) {
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stopping completion worker")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *CompletionWorker) RunOnce(ctx context.Context) int {
	runCtx, cancel := context.WithTimeout(ctx, completionRunTimeout)
	defer cancel()

	start := time.Now()
	n, err := w.coord.CompleteElapsed(runCtx)
	if err != nil {
		w.log.Error("completion run failed", zap.Error(err))
		return 0
	}

	w.log.Info("completion run finished",
		zap.Int("completed", n),
		zap.Duration("took", time.Since(start)),
	)
	return n
}
