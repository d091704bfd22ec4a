package tui

import (
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/internal/interaction"
)

// Translate maps a terminal mouse event to a pointer event relative to
// area. Motion outside area becomes PointerLeave; clicks and wheel events
// outside area are dropped.
func Translate(ev uv.Event, area uv.Rectangle) (interaction.Event, bool) {
	local := func(x, y int) (interaction.Point, bool) {
		p := interaction.Point{X: x - area.Min.X, Y: y - area.Min.Y}
		return p, uv.Pos(x, y).In(area)
	}

	switch ev := ev.(type) {
	case uv.MouseClickEvent:
		p, inside := local(ev.X, ev.Y)
		if !inside {
			return interaction.Event{}, false
		}
		return interaction.Event{Kind: interaction.PointerDown, Pos: p}, true
	case uv.MouseMotionEvent:
		p, inside := local(ev.X, ev.Y)
		if !inside {
			return interaction.Event{Kind: interaction.PointerLeave, Pos: p}, true
		}
		return interaction.Event{Kind: interaction.PointerMove, Pos: p}, true
	case uv.MouseReleaseEvent:
		p, _ := local(ev.X, ev.Y)
		return interaction.Event{Kind: interaction.PointerUp, Pos: p}, true
	case uv.MouseWheelEvent:
		p, inside := local(ev.X, ev.Y)
		if !inside {
			return interaction.Event{}, false
		}
		switch ev.Button {
		case uv.MouseWheelUp:
			return interaction.Event{Kind: interaction.Wheel, Pos: p, DeltaY: -1}, true
		case uv.MouseWheelDown:
			return interaction.Event{Kind: interaction.Wheel, Pos: p, DeltaY: 1}, true
		}
	}
	return interaction.Event{}, false
}

// Action is a keyboard command.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionZoomIn
	ActionZoomOut
	ActionPitchUp
	ActionPitchDown
	ActionYawLeft
	ActionYawRight
	ActionToggleHUD
	ActionSwitch
	ActionNext
	ActionUpload
	ActionDownload
	ActionExportGLB
	ActionView
	ActionRetry
	ActionSnapshot
)

// KeyAction maps a key press to an action.
func KeyAction(ev uv.KeyPressEvent) Action {
	switch {
	case ev.MatchString("ctrl+c", "esc", "q"):
		return ActionQuit
	case ev.MatchString("r"):
		return ActionReset
	case ev.MatchString("="), ev.Text == "+":
		return ActionZoomIn
	case ev.MatchString("-", "_"):
		return ActionZoomOut
	case ev.MatchString("w", "up"):
		return ActionPitchUp
	case ev.MatchString("s", "down"):
		return ActionPitchDown
	case ev.MatchString("a", "left"):
		return ActionYawLeft
	case ev.MatchString("d", "right"):
		return ActionYawRight
	case ev.MatchString("?", "shift+/"):
		return ActionToggleHUD
	case ev.MatchString("space", "t"):
		return ActionSwitch
	case ev.MatchString("n", "enter"):
		return ActionNext
	case ev.MatchString("u"):
		return ActionUpload
	case ev.MatchString("o"):
		return ActionDownload
	case ev.MatchString("g"):
		return ActionExportGLB
	case ev.MatchString("v"):
		return ActionView
	case ev.MatchString("ctrl+r"):
		return ActionRetry
	case ev.MatchString("p"):
		return ActionSnapshot
	}
	return ActionNone
}
