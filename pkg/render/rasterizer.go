package render

import (
	"image"
	"math"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
)

// Rasterizer draws lit, depth-tested models into a framebuffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	textures map[image.Image]*Texture

	// CullBackfaces skips triangles wound clockwise on screen. Off by default
	// so that open meshes stay visible from behind.
	CullBackfaces bool

	Stats Stats
}

// Stats counts work done since the last Clear.
type Stats struct {
	ModelsDrawn     int
	ModelsCulled    int
	TrianglesDrawn  int
	TrianglesCulled int
}

// NewRasterizer creates a rasterizer targeting fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	return &Rasterizer{
		camera:   camera,
		fb:       fb,
		zbuffer:  make([]float64, len(fb.Pixels)),
		textures: make(map[image.Image]*Texture),
	}
}

// Framebuffer returns the render target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Clear fills the framebuffer with bg and resets the depth buffer.
func (r *Rasterizer) Clear(bg Color) {
	r.fb.Clear(bg)
	n := len(r.zbuffer)
	if n > 0 {
		r.zbuffer[0] = math.MaxFloat64
		for i := 1; i < n; i *= 2 {
			copy(r.zbuffer[i:], r.zbuffer[:i])
		}
	}
	r.Stats = Stats{}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // NDC depth
	InvW  float64 // 1/w for perspective-correct UVs
	Color Color   // Lit vertex color
	UV    math3d.Vec2
}

// DrawModel renders every face of m with its bound material under lights.
func (r *Rasterizer) DrawModel(m *models.Model, lights Lighting) {
	if m == nil || m.Mesh == nil || r.fb.Width == 0 || r.fb.Height == 0 {
		return
	}

	world := m.Matrix()
	viewProj := r.camera.ViewProjectionMatrix()

	bounds := AABB{Min: m.Mesh.BoundsMin, Max: m.Mesh.BoundsMax}.Transform(world)
	if !FrustumFromMatrix(viewProj).IntersectAABB(bounds) {
		r.Stats.ModelsCulled++
		return
	}
	r.Stats.ModelsDrawn++

	mvp := viewProj.Mul(world)
	mesh := m.Mesh
	for _, f := range mesh.Faces {
		mat := mesh.FaceMaterial(f)
		base := ColorWhite
		if mat != nil {
			base = materialColor(mat)
		}
		var tex *Texture
		if mat != nil && mat.HasTexture() {
			tex = r.texture(mat.Texture)
		}

		var sv [3]screenVertex
		var normals [3]math3d.Vec3
		visible := true
		for i, idx := range f.V {
			v := mesh.Vertices[idx]
			clip := mvp.Project(v.Position)
			if clip.W <= r.camera.Near*0.5 {
				visible = false
				break
			}
			invW := 1 / clip.W
			sv[i] = screenVertex{
				X:    (clip.X*invW + 1) * 0.5 * float64(r.fb.Width),
				Y:    (1 - clip.Y*invW) * 0.5 * float64(r.fb.Height),
				Z:    clip.Z * invW,
				InvW: invW,
				UV:   v.UV,
			}
			normals[i] = world.MulVec3Dir(v.Normal)
		}
		if !visible {
			r.Stats.TrianglesCulled++
			continue
		}

		area := signedArea(sv)
		// Screen Y grows downward, so counter-clockwise faces have negative area.
		if area > 0 {
			if r.CullBackfaces {
				r.Stats.TrianglesCulled++
				continue
			}
			for i := range normals {
				normals[i] = normals[i].Negate()
			}
		}
		for i := range sv {
			sv[i].Color = lights.Shade(base, normals[i])
		}

		r.fillTriangle(sv, tex)
		r.Stats.TrianglesDrawn++
	}
}

func (r *Rasterizer) texture(img image.Image) *Texture {
	if tex, ok := r.textures[img]; ok {
		return tex
	}
	tex := TextureFromImage(img)
	r.textures[img] = tex
	return tex
}

func materialColor(m *models.Material) Color {
	c := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return Color{R: c(m.Diffuse[0]), G: c(m.Diffuse[1]), B: c(m.Diffuse[2]), A: 255}
}

// signedArea is twice the signed screen-space area of the triangle.
func signedArea(sv [3]screenVertex) float64 {
	return (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
}

// edgeCoeffs returns A, B, C for edge(x, y) = A*x + B*y + C.
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// fillTriangle scan-converts sv with incremental edge functions.
func (r *Rasterizer) fillTriangle(sv [3]screenVertex, tex *Texture) {
	area := signedArea(sv)
	if area == 0 {
		return
	}
	// Normalize winding so inside points have non-negative edge values.
	if area < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area = -area
	}
	invArea := 1 / area

	width, height := r.fb.Width, r.fb.Height
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(width-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(height-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	px, py := float64(minX)+0.5, float64(minY)+0.5
	w0Row := a0*px + b0*py + c0
	w1Row := a1*px + b1*py + c1
	w2Row := a2*px + b2*py + c2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := y * width
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc := math3d.V3(w0*invArea, w1*invArea, w2*invArea)
				z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
				if z < r.zbuffer[row+x] {
					r.zbuffer[row+x] = z
					c := interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc)
					if tex != nil {
						c = ModulateColor(tex.Sample(perspectiveUV(sv, bc)), c)
						c.A = 255
					}
					r.fb.SetPixel(x, y, c)
				}
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}

func perspectiveUV(sv [3]screenVertex, bc math3d.Vec3) (u, v float64) {
	w := bc.X*sv[0].InvW + bc.Y*sv[1].InvW + bc.Z*sv[2].InvW
	if w == 0 {
		return 0, 0
	}
	u = (bc.X*sv[0].UV.X*sv[0].InvW + bc.Y*sv[1].UV.X*sv[1].InvW + bc.Z*sv[2].UV.X*sv[2].InvW) / w
	v = (bc.X*sv[0].UV.Y*sv[0].InvW + bc.Y*sv[1].UV.Y*sv[1].InvW + bc.Z*sv[2].UV.Y*sv[2].InvW) / w
	return u, v
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		uint8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		uint8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		uint8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
