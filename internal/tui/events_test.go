package tui

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/internal/interaction"
)

func TestTranslate(t *testing.T) {
	area := uv.Rect(10, 5, 20, 10)

	tests := []struct {
		name   string
		ev     uv.Event
		want   interaction.Event
		wantOK bool
	}{
		{
			name:   "click inside",
			ev:     uv.MouseClickEvent{X: 12, Y: 7, Button: uv.MouseLeft},
			want:   interaction.Event{Kind: interaction.PointerDown, Pos: interaction.Point{X: 2, Y: 2}},
			wantOK: true,
		},
		{
			name: "click outside",
			ev:   uv.MouseClickEvent{X: 2, Y: 7, Button: uv.MouseLeft},
		},
		{
			name:   "motion inside",
			ev:     uv.MouseMotionEvent{X: 29, Y: 14},
			want:   interaction.Event{Kind: interaction.PointerMove, Pos: interaction.Point{X: 19, Y: 9}},
			wantOK: true,
		},
		{
			name:   "motion outside leaves",
			ev:     uv.MouseMotionEvent{X: 30, Y: 14},
			want:   interaction.Event{Kind: interaction.PointerLeave, Pos: interaction.Point{X: 20, Y: 9}},
			wantOK: true,
		},
		{
			name:   "release anywhere",
			ev:     uv.MouseReleaseEvent{X: 0, Y: 0},
			want:   interaction.Event{Kind: interaction.PointerUp, Pos: interaction.Point{X: -10, Y: -5}},
			wantOK: true,
		},
		{
			name:   "wheel up zooms in",
			ev:     uv.MouseWheelEvent{X: 10, Y: 5, Button: uv.MouseWheelUp},
			want:   interaction.Event{Kind: interaction.Wheel, DeltaY: -1},
			wantOK: true,
		},
		{
			name:   "wheel down zooms out",
			ev:     uv.MouseWheelEvent{X: 10, Y: 5, Button: uv.MouseWheelDown},
			want:   interaction.Event{Kind: interaction.Wheel, DeltaY: 1},
			wantOK: true,
		},
		{
			name: "horizontal wheel",
			ev:   uv.MouseWheelEvent{X: 10, Y: 5, Button: uv.MouseWheelLeft},
		},
		{
			name: "key",
			ev:   uv.KeyPressEvent{Code: 'a', Text: "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.ev, area)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Translate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		key  uv.KeyPressEvent
		want Action
	}{
		{uv.KeyPressEvent{Code: 'q', Text: "q"}, ActionQuit},
		{uv.KeyPressEvent{Code: uv.KeyEscape}, ActionQuit},
		{uv.KeyPressEvent{Code: 'c', Mod: uv.ModCtrl}, ActionQuit},
		{uv.KeyPressEvent{Code: 'r', Text: "r"}, ActionReset},
		{uv.KeyPressEvent{Code: 'r', Mod: uv.ModCtrl}, ActionRetry},
		{uv.KeyPressEvent{Code: '=', Text: "="}, ActionZoomIn},
		{uv.KeyPressEvent{Code: '=', Mod: uv.ModShift, Text: "+"}, ActionZoomIn},
		{uv.KeyPressEvent{Code: '-', Text: "-"}, ActionZoomOut},
		{uv.KeyPressEvent{Code: uv.KeyUp}, ActionPitchUp},
		{uv.KeyPressEvent{Code: 'd', Text: "d"}, ActionYawRight},
		{uv.KeyPressEvent{Code: '?', Text: "?"}, ActionToggleHUD},
		{uv.KeyPressEvent{Code: uv.KeySpace, Text: " "}, ActionSwitch},
		{uv.KeyPressEvent{Code: uv.KeyEnter}, ActionNext},
		{uv.KeyPressEvent{Code: 'u', Text: "u"}, ActionUpload},
		{uv.KeyPressEvent{Code: 'o', Text: "o"}, ActionDownload},
		{uv.KeyPressEvent{Code: 'g', Text: "g"}, ActionExportGLB},
		{uv.KeyPressEvent{Code: 'v', Text: "v"}, ActionView},
		{uv.KeyPressEvent{Code: 'p', Text: "p"}, ActionSnapshot},
		{uv.KeyPressEvent{Code: 'z', Text: "z"}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(uv.Key(tt.key).String(), func(t *testing.T) {
			if got := KeyAction(tt.key); got != tt.want {
				t.Errorf("KeyAction() = %d, want %d", got, tt.want)
			}
		})
	}
}
