// internal/app/system/workers/staledesk.go
package workers

import (
	"context"
	"sync"
	"time"

	standingstore "github.com/dalemusser/standhub/internal/app/store/standing"
	"go.uber.org/zap"
)

// StaleDeskCloser is a background worker that closes standing sessions
// whose owner walked away without pressing stop. A session open longer
// than maxAge is closed with its duration capped at maxAge, so one
// forgotten timer cannot swamp the leaderboard.
type StaleDeskCloser struct {
	standing *standingstore.Store
	log      *zap.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewStaleDeskCloser creates a stale-session worker.
//
// Parameters:
//   - standing: the standing sessions store
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 5 minutes)
//   - maxAge: how long a session may stay open before being closed (e.g., 16 hours)
func NewStaleDeskCloser(standing *standingstore.Store, logger *zap.Logger, interval, maxAge time.Duration) *StaleDeskCloser {
	return &StaleDeskCloser{
		standing: standing,
		log:      logger,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *StaleDeskCloser) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("stale standing-session worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *StaleDeskCloser) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("stale standing-session worker stopped")
}

func (w *StaleDeskCloser) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *StaleDeskCloser) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-w.maxAge)
	count, err := w.standing.CloseOpenBefore(ctx, cutoff, w.maxAge)
	if err != nil {
		w.log.Error("failed to close stale standing sessions", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("closed stale standing sessions", zap.Int64("count", count))
	}
}
