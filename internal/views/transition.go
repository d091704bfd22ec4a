package views

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	// NavigateDelay is how long the toggle zoom plays before the viewer opens.
	NavigateDelay = time.Second
	// ZoomScale is the toggle's size at the end of its zoom.
	ZoomScale = 1.5

	settleEpsilon = 1e-3
)

// Tween moves a value toward a target on a critically damped spring.
type Tween struct {
	spring   harmonica.Spring
	pos, vel float64
	target   float64
}

// NewTween starts at from and heads for to.
func NewTween(fps int, from, to float64) Tween {
	return Tween{
		// Critically damped, so the value never overshoots.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		pos:    from,
		target: to,
	}
}

// Update advances one frame and returns the new value.
func (t *Tween) Update() float64 {
	if t.Settled() {
		t.pos, t.vel = t.target, 0
		return t.pos
	}
	t.pos, t.vel = t.spring.Update(t.pos, t.vel, t.target)
	return t.pos
}

// Value returns the current value.
func (t *Tween) Value() float64 { return t.pos }

// Settled reports whether the value has come to rest on its target.
func (t *Tween) Settled() bool {
	return math.Abs(t.pos-t.target) < settleEpsilon && math.Abs(t.vel) < settleEpsilon
}

// TransitionCoordinator drives the cosmetic motion between views: every
// navigation slides the new page up from the bottom, and clicking the
// toggle zooms it before opening the viewer.
type TransitionCoordinator struct {
	router *Router
	fps    int

	mu         sync.Mutex
	slide      Tween
	zoom       Tween
	navigateAt time.Time
	pending    View
}

// NewTransitionCoordinator listens to router and animates at fps.
func NewTransitionCoordinator(router *Router, fps int) *TransitionCoordinator {
	if fps <= 0 {
		fps = 30
	}
	tc := &TransitionCoordinator{
		router: router,
		fps:    fps,
		slide:  NewTween(fps, 0, 0),
		zoom:   NewTween(fps, 1, 1),
	}
	router.OnNavigate(func(_, _ View) {
		tc.mu.Lock()
		defer tc.mu.Unlock()
		tc.slide = NewTween(tc.fps, 1, 0)
		tc.zoom = NewTween(tc.fps, 1, 1)
	})
	return tc
}

// ScheduleNavigate switches to to once delay has passed since now and
// starts the toggle zoom. A second call replaces the pending navigation.
func (tc *TransitionCoordinator) ScheduleNavigate(to View, now time.Time, delay time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.pending = to
	tc.navigateAt = now.Add(delay)
	tc.zoom = NewTween(tc.fps, tc.zoom.Value(), ZoomScale)
}

// Pending reports whether a scheduled navigation has not fired yet.
func (tc *TransitionCoordinator) Pending() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return !tc.navigateAt.IsZero()
}

// Tick advances the animations by one frame and fires a due navigation.
func (tc *TransitionCoordinator) Tick(now time.Time) {
	tc.mu.Lock()
	tc.slide.Update()
	tc.zoom.Update()
	fire := !tc.navigateAt.IsZero() && !now.Before(tc.navigateAt)
	to := tc.pending
	if fire {
		tc.navigateAt = time.Time{}
	}
	tc.mu.Unlock()

	// Navigate outside the lock: listeners reset the tweens.
	if fire {
		tc.router.Navigate(to)
	}
}

// SlideOffset is the fraction of the screen height the page is still
// shifted down, from 1 right after navigation to 0 at rest.
func (tc *TransitionCoordinator) SlideOffset() float64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return min(max(tc.slide.Value(), 0), 1)
}

// Zoom is the toggle's current scale.
func (tc *TransitionCoordinator) Zoom() float64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.zoom.Value()
}

// Animating reports whether any tween is still moving.
func (tc *TransitionCoordinator) Animating() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return !tc.slide.Settled() || !tc.zoom.Settled()
}
