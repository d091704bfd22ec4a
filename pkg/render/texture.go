package render

import (
	"image"
	"math"
)

// Texture holds a decoded diffuse map in row-major RGBA.
type Texture struct {
	Width    int
	Height   int
	Pixels   []Color
	Bilinear bool
}

// TextureFromImage copies img into a texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: make([]Color, bounds.Dx()*bounds.Dy()),
	}
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.Pixels[y*tex.Width+x] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		}
	}
	return tex
}

func (t *Texture) at(x, y int) Color {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the color at UV (V up, repeating outside [0,1]).
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return ColorWhite
	}
	u -= math.Floor(u)
	v = 1 - (v - math.Floor(v))

	if !t.Bilinear {
		return t.at(int(u*float64(t.Width)), int(v*float64(t.Height)))
	}

	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := lerpColor(t.at(x0, y0), t.at(x0+1, y0), tx)
	bot := lerpColor(t.at(x0, y0+1), t.at(x0+1, y0+1), tx)
	return lerpColor(top, bot, ty)
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// MultiplyColor scales a color's RGB by intensity, saturating at 255.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}

// ModulateColor multiplies two colors channel by channel.
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}
