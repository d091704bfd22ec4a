package tui

import (
	"fmt"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/internal/views"
)

// HUD is the viewer overlay: frame rate, model name and triangle count on
// the top row, key hints on the bottom row.
type HUD struct {
	mu        sync.Mutex
	visible   bool
	name      string
	triangles int
	fps       float64
	frames    int
	since     time.Time
	message   string
}

// NewHUD creates a visible HUD.
func NewHUD() *HUD {
	return &HUD{visible: true, since: time.Now()}
}

// SetModel records what is being shown.
func (h *HUD) SetModel(name string, triangles int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.name, h.triangles = name, triangles
}

// SetMessage shows msg on the bottom row until replaced. Empty clears it.
func (h *HUD) SetMessage(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.message = msg
}

// Message returns the current message.
func (h *HUD) Message() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.message
}

// Toggle shows or hides the info rows.
func (h *HUD) Toggle() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = !h.visible
}

// Frame counts one presented frame.
func (h *HUD) Frame(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
	if elapsed := now.Sub(h.since); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = now
	}
}

// Draw paints the HUD over area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle) {
	h.mu.Lock()
	visible, name, triangles, fps, msg := h.visible, h.name, h.triangles, h.fps, h.message
	h.mu.Unlock()

	top, bottom := area.Min.Y, area.Max.Y-1
	if msg != "" {
		drawCentered(scr, area, bottom-1, " "+msg+" ", errorStyle)
	}
	if !visible {
		return
	}

	drawText(scr, area.Min.X, top, fmt.Sprintf(" %.0f FPS ", fps), accentStyle)
	if name != "" {
		drawCentered(scr, area, top, " "+name+" ", textStyle)
	}
	polys := fmt.Sprintf(" %d polys ", triangles)
	drawText(scr, area.Max.X-len(polys), top, polys, textStyle)

	drawText(scr, area.Min.X, bottom, " drag: rotate  wheel/+/-: zoom  r: reset  o: save obj  g: save glb  n: upload  ?: hud  q: quit ", dimStyle)
}

// Indicator shows load progress over the viewer. It implements
// lifecycle.Indicator.
type Indicator struct {
	mu       sync.Mutex
	visible  bool
	progress float64
}

// Show implements lifecycle.Indicator.
func (i *Indicator) Show(progress float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.visible = true
	i.progress = progress
}

// Hide implements lifecycle.Indicator.
func (i *Indicator) Hide() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.visible = false
}

// Visible reports whether the indicator is showing and at what progress.
func (i *Indicator) Visible() (bool, float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible, i.progress
}

// Draw paints the progress bar in the middle of area while visible.
func (i *Indicator) Draw(scr uv.Screen, area uv.Rectangle) {
	visible, progress := i.Visible()
	if !visible {
		return
	}
	mid := area.Min.Y + area.Dy()/2
	drawCentered(scr, area, mid-1, " Loading model ", textStyle)
	drawCentered(scr, area, mid, " "+views.ProgressBar(progress, min(40, max(area.Dx()-10, 10)))+" ", accentStyle)
}
