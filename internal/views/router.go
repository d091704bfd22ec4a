// Package views holds the navigable screens and the state behind them:
// the 2D/3D toggle, the model viewer and the upload page.
package views

import (
	"fmt"
	"slices"
	"sync"
)

// View is a navigable screen.
type View int

const (
	ViewToggle View = iota
	ViewHome
	ViewUpload
)

func (v View) String() string {
	switch v {
	case ViewToggle:
		return "toggle"
	case ViewHome:
		return "home"
	case ViewUpload:
		return "upload"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// Router tracks the current view and notifies listeners on every change.
type Router struct {
	mu        sync.Mutex
	current   View
	listeners []func(from, to View)
}

// NewRouter starts at start.
func NewRouter(start View) *Router {
	return &Router{current: start}
}

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnNavigate registers fn to run after every view change.
func (r *Router) OnNavigate(fn func(from, to View)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Navigate switches to to. It reports false when to is already active.
func (r *Router) Navigate(to View) bool {
	r.mu.Lock()
	from := r.current
	if from == to {
		r.mu.Unlock()
		return false
	}
	r.current = to
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return true
}

// Next follows the forward link of the current view: toggle leads home,
// home leads to upload and upload returns home.
func (r *Router) Next() bool {
	switch r.Current() {
	case ViewToggle, ViewUpload:
		return r.Navigate(ViewHome)
	default:
		return r.Navigate(ViewUpload)
	}
}
