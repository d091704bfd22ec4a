package render

import (
	"math"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
)

// Lighting is an ambient term plus one directional light.
type Lighting struct {
	Ambient        Color
	Directional    Color
	Intensity      float64
	DirectionToSun math3d.Vec3 // Points from the scene toward the light
}

// DefaultLighting is a dim grey ambient (0x404040) and a white directional
// light of intensity 1 shining from (1, 1, 1).
func DefaultLighting() Lighting {
	return Lighting{
		Ambient:        Hex(0x404040),
		Directional:    Hex(0xffffff),
		Intensity:      1,
		DirectionToSun: math3d.V3(1, 1, 1).Normalize(),
	}
}

// Shade applies Lambert lighting to base for a surface with the given
// world-space normal.
func (l Lighting) Shade(base Color, normal math3d.Vec3) Color {
	diffuse := math.Max(0, normal.Normalize().Dot(l.DirectionToSun)) * l.Intensity
	light := func(amb, dir uint8) float64 {
		return float64(amb)/255 + float64(dir)/255*diffuse
	}
	return Color{
		R: channel(base.R, light(l.Ambient.R, l.Directional.R)),
		G: channel(base.G, light(l.Ambient.G, l.Directional.G)),
		B: channel(base.B, light(l.Ambient.B, l.Directional.B)),
		A: base.A,
	}
}

func channel(c uint8, k float64) uint8 {
	return uint8(math.Min(255, float64(c)*k))
}
