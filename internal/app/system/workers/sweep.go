// internal/app/system/workers/sweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/reservehub/reservehub/internal/app/system/sweeper"
	"go.uber.org/zap"
)

// Sweep is the background worker that periodically reconciles bookings
// against the resource catalog and refreshes dashboard metrics.
type Sweep struct {
	sweeper  *sweeper.Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewSweep creates a sweep worker that runs every interval.
func NewSweep(sw *sweeper.Sweeper, logger *zap.Logger, interval time.Duration) *Sweep {
	return &Sweep{
		sweeper:  sw,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *Sweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("consistency sweep worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Sweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("consistency sweep worker stopped")
}

func (w *Sweep) run() {
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

func (w *Sweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := w.sweeper.ReconcileAll(ctx); err != nil {
		w.log.Error("consistency sweep failed", zap.Error(err))
	}
}
