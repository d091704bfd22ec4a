package tui

import (
	"sync"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/internal/viewport"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

// Pane is the region of the terminal a viewport renders into. It
// implements viewport.Container.
type Pane struct {
	screen Screen
	draw   *sync.Mutex // shared with every other writer to screen

	// overlay draws text on top of each presented frame.
	overlay func(scr uv.Screen, area uv.Rectangle)
	// offset returns how many rows the frame is pushed down.
	offset func(rows int) int

	mu   sync.Mutex
	area uv.Rectangle
	fb   *render.Framebuffer
}

// NewPane creates a pane covering area. draw serializes screen access.
func NewPane(screen Screen, draw *sync.Mutex, area uv.Rectangle) *Pane {
	return &Pane{screen: screen, draw: draw, area: area}
}

// SetArea moves the pane. The next viewport resize picks up the new size.
func (p *Pane) SetArea(area uv.Rectangle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.area = area
}

// Area returns the pane's region.
func (p *Pane) Area() uv.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.area
}

// Size implements viewport.Container.
func (p *Pane) Size() viewport.Size {
	a := p.Area()
	return viewport.Size{Cols: a.Dx(), Rows: a.Dy()}
}

// Insert implements viewport.Container.
func (p *Pane) Insert(fb *render.Framebuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fb = fb
}

// Remove implements viewport.Container.
func (p *Pane) Remove(fb *render.Framebuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fb == fb {
		p.fb = nil
	}
}

// Surface returns the inserted framebuffer, or nil.
func (p *Pane) Surface() *render.Framebuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fb
}

// Present implements viewport.Container. Frames from a surface that is no
// longer inserted are dropped.
func (p *Pane) Present(fb *render.Framebuffer) error {
	p.mu.Lock()
	current, area := p.fb, p.area
	p.mu.Unlock()
	if fb != current {
		return nil
	}

	p.draw.Lock()
	defer p.draw.Unlock()

	target := area
	if p.offset != nil {
		if off := p.offset(area.Dy()); off > 0 {
			fill(p.screen, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), off), render.ColorBlack)
			target.Min.Y += off
		}
	}
	fb.Draw(p.screen, target)
	if p.overlay != nil {
		p.overlay(p.screen, area)
	}
	return p.screen.Display()
}
