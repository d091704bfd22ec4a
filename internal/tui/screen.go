// Package tui is the terminal front-end: it draws the views with
// ultraviolet and turns terminal input into viewer actions.
package tui

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

// Screen is a terminal surface that can flush what was drawn on it.
type Screen interface {
	uv.Screen
	Display() error
}

var (
	textStyle   = uv.Style{Fg: render.ColorWhite, Bg: render.ColorBlack}
	dimStyle    = uv.Style{Fg: render.RGB(150, 150, 160), Bg: render.ColorBlack}
	accentStyle = uv.Style{Fg: render.RGB(90, 220, 140), Bg: render.ColorBlack, Attrs: uv.AttrBold}
	errorStyle  = uv.Style{Fg: render.RGB(255, 110, 110), Bg: render.ColorBlack, Attrs: uv.AttrBold}
)

// drawText writes s at (x, y), one cell per rune, clipped to the screen.
// It returns the column after the last rune.
func drawText(scr uv.Screen, x, y int, s string, style uv.Style) int {
	b := scr.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return x + len([]rune(s))
	}
	for _, r := range s {
		if x >= b.Min.X && x < b.Max.X {
			scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: 1, Style: style})
		}
		x++
	}
	return x
}

// drawCentered writes s centered horizontally in area on row y.
func drawCentered(scr uv.Screen, area uv.Rectangle, y int, s string, style uv.Style) {
	x := area.Min.X + max((area.Dx()-len([]rune(s)))/2, 0)
	drawText(scr, x, y, s, style)
}

// fill paints area with blank cells of color c.
func fill(scr uv.Screen, area uv.Rectangle, c color.Color) {
	area = area.Intersect(scr.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1, Style: uv.Style{Bg: c}})
		}
	}
}
