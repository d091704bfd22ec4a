package viewport

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

// fakeContainer records surface membership and presented frames.
type fakeContainer struct {
	mu       sync.Mutex
	size     Size
	surfaces []*render.Framebuffer
	inserted int
	removed  int
	frames   [][]render.Color
}

func (c *fakeContainer) Size() Size { return c.size }

func (c *fakeContainer) Insert(fb *render.Framebuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaces = append(c.surfaces, fb)
	c.inserted++
}

func (c *fakeContainer) Remove(fb *render.Framebuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surfaces = slices.DeleteFunc(c.surfaces, func(s *render.Framebuffer) bool { return s == fb })
	c.removed++
}

func (c *fakeContainer) Present(fb *render.Framebuffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, slices.Clone(fb.Pixels))
	return nil
}

func (c *fakeContainer) Surfaces() []*render.Framebuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.surfaces)
}

func triangleModel() *models.Model {
	mesh := models.NewMesh("tri")
	mesh.Vertices = []models.MeshVertex{
		{Position: math3d.V3(-20, -20, 0)},
		{Position: math3d.V3(20, -20, 0)},
		{Position: math3d.V3(0, 20, 0)},
	}
	mesh.Faces = []models.Face{{V: [3]int{0, 1, 2}, Material: -1}}
	mesh.Finish()
	return models.NewModel(mesh)
}

func newTestViewport(t *testing.T, cols, rows int) (*Viewport, *fakeContainer) {
	t.Helper()
	c := &fakeContainer{size: Size{Cols: cols, Rows: rows}}
	v, err := Create(c, DefaultOptions(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return v, c
}

func TestCreateInsertsSizedSurface(t *testing.T) {
	v, c := newTestViewport(t, 80, 24)

	surfaces := c.Surfaces()
	if len(surfaces) != 1 {
		t.Fatalf("container holds %d surfaces, want 1", len(surfaces))
	}
	if fb := surfaces[0]; fb.Width != 80 || fb.Height != 48 {
		t.Errorf("surface = %dx%d, want 80x48", fb.Width, fb.Height)
	}
	if got, _ := v.Aspect(); math.Abs(got-80.0/48.0) > 1e-9 {
		t.Errorf("aspect = %v, want %v", got, 80.0/48.0)
	}
	if got, _ := v.CameraPosition(); !got.ApproxEqual(math3d.V3(0, 0, 5), 1e-9) {
		t.Errorf("camera = %v, want (0, 0, 5)", got)
	}
}

func TestCreateRejectsNilContainer(t *testing.T) {
	if _, err := Create(nil, DefaultOptions(), nil); err == nil {
		t.Error("expected error for nil container")
	}
}

func TestResizeReplacesSurface(t *testing.T) {
	v, c := newTestViewport(t, 80, 24)
	old, err := v.Surface()
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []Size{{40, 30}, {40, 30}, {120, 10}} {
		if err := v.Resize(size); err != nil {
			t.Fatalf("Resize(%v): %v", size, err)
		}
		want := float64(size.Cols) / float64(size.Rows*2)
		if got, _ := v.Aspect(); math.Abs(got-want) > 1e-9 {
			t.Errorf("aspect after %v = %v, want %v", size, got, want)
		}
	}

	surfaces := c.Surfaces()
	if len(surfaces) != 1 || surfaces[0] == old {
		t.Errorf("container surfaces = %d (old present: %v), want only the new one", len(surfaces), slices.Contains(surfaces, old))
	}
}

func TestDestroy(t *testing.T) {
	v, c := newTestViewport(t, 20, 10)
	if err := v.Attach(triangleModel()); err != nil {
		t.Fatal(err)
	}

	if err := v.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if n := len(c.Surfaces()); n != 0 {
		t.Errorf("container holds %d surfaces after Destroy, want 0", n)
	}

	calls := map[string]func() error{
		"Destroy":       v.Destroy,
		"Render":        v.Render,
		"Resize":        func() error { return v.Resize(Size{10, 10}) },
		"Attach":        func() error { return v.Attach(triangleModel()) },
		"ResetRotation": v.ResetRotation,
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrDestroyed) {
				t.Errorf("%s after Destroy = %v, want ErrDestroyed", name, err)
			}
		})
	}
	queries := map[string]func() error{
		"Rotate":         func() error { return v.Rotate(1, 1) },
		"Zoom":           func() error { return v.Zoom(1) },
		"HasModel":       func() error { _, err := v.HasModel(); return err },
		"Models":         func() error { _, err := v.Models(); return err },
		"Distance":       func() error { _, err := v.Distance(); return err },
		"CameraPosition": func() error { _, err := v.CameraPosition(); return err },
		"Aspect":         func() error { _, err := v.Aspect(); return err },
		"Surface":        func() error { _, err := v.Surface(); return err },
		"Stats":          func() error { _, _, err := v.Stats(); return err },
	}
	for name, call := range queries {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrDestroyed) {
				t.Errorf("%s after Destroy = %v, want ErrDestroyed", name, err)
			}
		})
	}
}

func TestRotateAndZoomNeedModel(t *testing.T) {
	v, _ := newTestViewport(t, 20, 10)
	if err := v.Rotate(0.1, 0.1); !errors.Is(err, ErrNoModel) {
		t.Errorf("Rotate without a model = %v, want ErrNoModel", err)
	}
	if err := v.Zoom(1); !errors.Is(err, ErrNoModel) {
		t.Errorf("Zoom without a model = %v, want ErrNoModel", err)
	}
	if d, err := v.Distance(); err != nil || d != 5 {
		t.Errorf("Distance() = %v, %v; want 5", d, err)
	}
	if ok, err := v.HasModel(); err != nil || ok {
		t.Errorf("HasModel() = %v, %v; want false", ok, err)
	}
}

func TestRotateAppliesToModels(t *testing.T) {
	v, _ := newTestViewport(t, 20, 10)
	m := triangleModel()
	if err := v.Attach(m); err != nil {
		t.Fatal(err)
	}

	if err := v.Rotate(0.3, -0.2); err != nil {
		t.Fatalf("Rotate with a model attached: %v", err)
	}
	if m.Rotation.Y != 0.3 || m.Rotation.X != -0.2 || m.Rotation.Z != 0 {
		t.Errorf("rotation = %v, want (-0.2, 0.3, 0)", m.Rotation)
	}

	if err := v.ResetRotation(); err != nil {
		t.Fatal(err)
	}
	if m.Rotation != math3d.Zero3() {
		t.Errorf("rotation after reset = %v", m.Rotation)
	}
}

func TestZoomClamped(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  float64
	}{
		{"in", -1.5, 3.5},
		{"out", 2, 7},
		{"past minimum", -100, 1},
		{"past maximum", 100, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := newTestViewport(t, 20, 10)
			_ = v.Attach(triangleModel())
			if err := v.Zoom(tc.delta); err != nil {
				t.Fatal(err)
			}
			if got, _ := v.Distance(); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	v, c := newTestViewport(t, 40, 20)
	_ = v.Attach(triangleModel())

	for range 2 {
		if err := v.Render(); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if len(c.frames) != 2 {
		t.Fatalf("presented %d frames, want 2", len(c.frames))
	}
	if !slices.Equal(c.frames[0], c.frames[1]) {
		t.Error("rendering an unchanged scene changed the frame")
	}
	if !slices.ContainsFunc(c.frames[0], func(p render.Color) bool { return p != render.ColorBackground }) {
		t.Error("model did not reach the frame")
	}
}
