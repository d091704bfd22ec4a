// Package lifecycle mounts a viewport into a container, wires pointer
// controls, loads the asset pair and tears it all down again.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/interaction"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/internal/viewport"
)

var (
	ErrMounted    = errors.New("already mounted")
	ErrNotMounted = errors.New("not mounted")
)

// Indicator is the loading display. Show is called for every progress step
// while loading; Hide exactly once when the load finishes or is abandoned.
type Indicator interface {
	Show(progress float64)
	Hide()
}

type nopIndicator struct{}

func (nopIndicator) Show(float64) {}
func (nopIndicator) Hide()        {}

// Options describe what to load and how to present it.
type Options struct {
	MaterialsURL    string
	GeometryURL     string
	FPS             int
	Viewport        viewport.Options
	Sensitivity     float64
	ZoomSensitivity float64
}

// Lifecycle owns one mounted viewport and everything attached to it. It can
// be mounted again after Unmount.
type Lifecycle struct {
	opts      Options
	loader    *loader.Loader
	events    interaction.EventSource
	indicator Indicator
	observer  func(loader.State)
	log       *zap.Logger

	mu            sync.Mutex
	mounted       bool
	vp            *viewport.Viewport
	loop          *viewport.RenderLoop
	removeHandler func()
	attempt       *loader.Attempt
	unsubscribe   func()
	showing       bool
	state         loader.State
}

// New creates an unmounted lifecycle. indicator may be nil.
func New(opts Options, ld *loader.Loader, events interaction.EventSource, indicator Indicator, log *zap.Logger) *Lifecycle {
	if indicator == nil {
		indicator = nopIndicator{}
	}
	if ld == nil {
		ld = loader.New(nil, log)
	}
	return &Lifecycle{
		opts:      opts,
		loader:    ld,
		events:    events,
		indicator: indicator,
		log:       logger.OrNop(log).Named("lifecycle"),
	}
}

// OnState registers fn to observe every load state applied to the viewport.
// It must be called before Mount.
func (l *Lifecycle) OnState(fn func(loader.State)) {
	l.observer = fn
}

// Mount creates the viewport inside container, starts the render loop and
// begins loading without waiting for it.
func (l *Lifecycle) Mount(ctx context.Context, container viewport.Container) error {
	l.mu.Lock()
	if l.mounted {
		l.mu.Unlock()
		return ErrMounted
	}

	vp, err := viewport.Create(container, l.opts.Viewport, l.log)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("mount: %w", err)
	}

	ctrl := interaction.NewController(vp, l.opts.Sensitivity, l.opts.ZoomSensitivity, l.log)
	l.removeHandler = func() {}
	if l.events != nil {
		l.removeHandler = ctrl.Bind(l.events)
	}

	l.loop = viewport.NewRenderLoop(l.opts.FPS, vp.Render, l.log)
	l.loop.Start(ctx)

	l.vp = vp
	l.mounted = true
	l.state = loader.State{Phase: loader.Idle}
	l.mu.Unlock()

	l.log.Debug("mounted",
		zap.String("materials", l.opts.MaterialsURL),
		zap.String("geometry", l.opts.GeometryURL))
	return l.startLoad(ctx)
}

// Retry starts a fresh load after a failed one.
func (l *Lifecycle) Retry(ctx context.Context) error {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return ErrNotMounted
	}
	if l.state.Phase != loader.Failed {
		l.mu.Unlock()
		return fmt.Errorf("retry: load is %s", l.state.Phase)
	}
	l.mu.Unlock()
	return l.startLoad(ctx)
}

func (l *Lifecycle) startLoad(ctx context.Context) error {
	attempt := l.loader.Load(ctx, l.opts.MaterialsURL, l.opts.GeometryURL)

	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		attempt.Cancel()
		return ErrNotMounted
	}
	if l.attempt != nil {
		l.unsubscribe()
		l.attempt.Cancel()
	}
	l.attempt = attempt
	l.unsubscribe = func() {}
	l.state = loader.State{Phase: loader.Loading}
	l.showing = true
	l.indicator.Show(0)
	l.mu.Unlock()

	// Subscribe replays the current state synchronously, so it runs unlocked.
	unsubscribe := attempt.Subscribe(func(s loader.State) { l.apply(attempt, s) })

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted || l.attempt != attempt {
		unsubscribe()
		return nil
	}
	l.unsubscribe = unsubscribe
	return nil
}

// apply moves a load state into the viewport unless the lifecycle has been
// unmounted or the attempt superseded.
func (l *Lifecycle) apply(attempt *loader.Attempt, s loader.State) {
	l.mu.Lock()
	if !l.mounted || l.attempt != attempt {
		l.mu.Unlock()
		return
	}
	l.state = s

	switch s.Phase {
	case loader.Loading:
		l.showing = true
		l.indicator.Show(s.Progress)
	case loader.Ready:
		if err := l.vp.Attach(s.Model); err != nil {
			l.log.Warn("attach model", zap.Error(err))
		}
		l.hideLocked()
	case loader.Failed:
		l.hideLocked()
	}
	observer := l.observer
	l.mu.Unlock()

	if observer != nil {
		observer(s)
	}
}

func (l *Lifecycle) hideLocked() {
	if l.showing {
		l.showing = false
		l.indicator.Hide()
	}
}

// Unmount removes the pointer handler, abandons the load, stops the render
// loop and destroys the viewport, in that order. A completion arriving after
// Unmount is ignored.
func (l *Lifecycle) Unmount() error {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return ErrNotMounted
	}
	l.mounted = false
	l.hideLocked()
	removeHandler, unsubscribe, attempt := l.removeHandler, l.unsubscribe, l.attempt
	loop, vp := l.loop, l.vp
	l.removeHandler, l.unsubscribe, l.attempt = nil, nil, nil
	l.loop, l.vp = nil, nil
	l.mu.Unlock()

	removeHandler()
	if attempt != nil {
		unsubscribe()
		attempt.Cancel()
	}
	loop.Stop()
	if err := vp.Destroy(); err != nil {
		return fmt.Errorf("unmount: %w", err)
	}
	l.log.Debug("unmounted")
	return nil
}

// ResetView zeroes the rotation of every attached model.
func (l *Lifecycle) ResetView() error {
	vp, err := l.Viewport()
	if err != nil {
		return err
	}
	return vp.ResetRotation()
}

// Viewport returns the mounted viewport.
func (l *Lifecycle) Viewport() (*viewport.Viewport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return nil, ErrNotMounted
	}
	return l.vp, nil
}

// LoadState returns the last state applied from the current attempt.
func (l *Lifecycle) LoadState() loader.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Mounted reports whether Mount has succeeded without a matching Unmount.
func (l *Lifecycle) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}
