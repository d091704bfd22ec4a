package tui

import (
	"strings"
	"sync"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

type fakeScreen struct {
	uv.ScreenBuffer

	mu       sync.Mutex
	displays int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{ScreenBuffer: uv.NewScreenBuffer(w, h)}
}

func (s *fakeScreen) Display() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displays++
	return nil
}

func (s *fakeScreen) Displays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displays
}

// row returns the text content of screen row y.
func (s *fakeScreen) row(y int) string {
	var out []rune
	b := s.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		c := s.CellAt(x, y)
		if c == nil || c.Content == "" {
			out = append(out, ' ')
			continue
		}
		out = append(out, []rune(c.Content)...)
	}
	return string(out)
}

func TestDrawTextClips(t *testing.T) {
	scr := newFakeScreen(5, 2)
	next := drawText(scr, 3, 0, "abcd", textStyle)
	if next != 7 {
		t.Errorf("drawText() = %d, want 7", next)
	}
	if got := scr.row(0); got != "   ab" {
		t.Errorf("row 0 = %q, want %q", got, "   ab")
	}

	// Off-screen rows are ignored.
	drawText(scr, 0, 5, "zz", textStyle)
	drawCentered(scr, uv.Rect(0, 1, 5, 1), 1, "hi", textStyle)
	if got := scr.row(1); got != " hi  " {
		t.Errorf("row 1 = %q, want %q", got, " hi  ")
	}
}

func TestPanePresent(t *testing.T) {
	scr := newFakeScreen(4, 4)
	var draw sync.Mutex
	p := NewPane(scr, &draw, scr.Bounds())

	if got := p.Size(); got.Cols != 4 || got.Rows != 4 {
		t.Fatalf("Size() = %+v, want 4x4", got)
	}

	fb := render.NewFramebuffer(4, 4)
	fb.Clear(render.ColorWhite)

	// Not inserted yet: dropped.
	if err := p.Present(fb); err != nil {
		t.Fatal(err)
	}
	if scr.Displays() != 0 {
		t.Fatalf("stale frame was displayed")
	}

	overlays := 0
	p.overlay = func(scr uv.Screen, area uv.Rectangle) {
		overlays++
		drawText(scr, area.Min.X, area.Max.Y-1, "x", textStyle)
	}
	p.offset = func(rows int) int { return 1 }

	p.Insert(fb)
	if err := p.Present(fb); err != nil {
		t.Fatal(err)
	}
	if scr.Displays() != 1 || overlays != 1 {
		t.Fatalf("displays = %d, overlays = %d, want 1, 1", scr.Displays(), overlays)
	}
	if got := scr.CellAt(0, 0).Content; got != " " {
		t.Errorf("offset row content = %q, want blank", got)
	}
	if got := scr.CellAt(0, 1).Content; got != "▀" {
		t.Errorf("frame row content = %q, want ▀", got)
	}
	if got := scr.CellAt(0, 3).Content; got != "x" {
		t.Errorf("overlay content = %q, want x", got)
	}

	p.Remove(fb)
	if p.Surface() != nil {
		t.Fatal("surface still inserted after Remove")
	}
	if err := p.Present(fb); err != nil {
		t.Fatal(err)
	}
	if scr.Displays() != 1 {
		t.Error("frame presented after Remove")
	}
}

func TestIndicator(t *testing.T) {
	var ind Indicator
	scr := newFakeScreen(60, 10)

	ind.Draw(scr, scr.Bounds())
	if got := scr.row(5); got != strings.Repeat(" ", 60) {
		t.Errorf("hidden indicator drew %q", got)
	}

	ind.Show(42)
	if visible, p := ind.Visible(); !visible || p != 42 {
		t.Fatalf("Visible() = %v, %v", visible, p)
	}
	ind.Draw(scr, scr.Bounds())
	if got := scr.row(5); !containsAll(got, "[", "42%") {
		t.Errorf("progress row = %q", got)
	}

	ind.Hide()
	if visible, _ := ind.Visible(); visible {
		t.Error("Visible() after Hide")
	}
}

func TestHUD(t *testing.T) {
	h := NewHUD()
	h.SetModel("house.obj", 1234)
	scr := newFakeScreen(80, 6)

	h.Draw(scr, scr.Bounds())
	if got := scr.row(0); !containsAll(got, "FPS", "house.obj", "1234 polys") {
		t.Errorf("top row = %q", got)
	}
	if got := scr.row(5); !containsAll(got, "drag: rotate") {
		t.Errorf("bottom row = %q", got)
	}

	h.Toggle()
	h.SetMessage("Cancelled.")
	scr = newFakeScreen(80, 6)
	h.Draw(scr, scr.Bounds())
	if got := scr.row(0); containsAll(got, "FPS") {
		t.Errorf("hidden HUD drew %q", got)
	}
	if got := scr.row(4); !containsAll(got, "Cancelled.") {
		t.Errorf("message row = %q", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
