package viewport

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

// RenderLoop calls a frame function at a fixed rate until stopped.
type RenderLoop struct {
	interval time.Duration
	frame    func() error
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRenderLoop creates a loop running frame fps times per second.
func NewRenderLoop(fps int, frame func() error, log *zap.Logger) *RenderLoop {
	if fps <= 0 {
		fps = 30
	}
	return &RenderLoop{
		interval: time.Second / time.Duration(fps),
		frame:    frame,
		log:      logger.OrNop(log).Named("loop"),
	}
}

// Start launches the loop. Starting a running loop does nothing.
func (l *RenderLoop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop ends the loop and waits for an in-flight frame to finish.
func (l *RenderLoop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (l *RenderLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil
}

func (l *RenderLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	next := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := l.frame(); err != nil {
			if errors.Is(err, ErrDestroyed) {
				return
			}
			l.log.Debug("frame failed", zap.Error(err))
		}

		// Schedule against the ideal timeline; resync after a hitch.
		next = next.Add(l.interval)
		wait := time.Until(next)
		if wait < -l.interval {
			next = time.Now().Add(l.interval)
			wait = l.interval
		}
		timer.Reset(max(wait, 0))
	}
}
