// Package viewport owns a render surface inside a host container: camera,
// lights, the attached models and the framebuffer they are drawn into.
package viewport

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/pkg/math3d"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

var (
	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = errors.New("viewport destroyed")
	// ErrNoModel is returned by controls that need an attached model.
	ErrNoModel = errors.New("no model attached")
)

// Size is a container area in terminal cells.
type Size struct {
	Cols, Rows int
}

// Container hosts the render surface. Insert and Remove bracket the
// lifetime of each surface; Present shows a finished frame.
type Container interface {
	Size() Size
	Insert(fb *render.Framebuffer)
	Remove(fb *render.Framebuffer)
	Present(fb *render.Framebuffer) error
}

// Options configure the camera and scene.
type Options struct {
	FOVDegrees    float64
	Near, Far     float64
	Distance      float64
	MinDistance   float64
	MaxDistance   float64
	Background    render.Color
	CullBackfaces bool
	Lighting      render.Lighting
}

// DefaultOptions matches the viewer defaults: 75° FOV, camera 5 units out,
// zoom bounded to [1, 20].
func DefaultOptions() Options {
	return Options{
		FOVDegrees:  75,
		Near:        0.1,
		Far:         1000,
		Distance:    5,
		MinDistance: 1,
		MaxDistance: 20,
		Background:  render.ColorBackground,
		Lighting:    render.DefaultLighting(),
	}
}

// Viewport renders attached models. All methods are safe for concurrent use;
// transform writes and frame reads are serialized by one mutex.
type Viewport struct {
	mu        sync.Mutex
	container Container
	opts      Options
	camera    *render.Camera
	fb        *render.Framebuffer
	raster    *render.Rasterizer
	models    []*models.Model
	destroyed bool
	frames    int

	log *zap.Logger
}

// Create builds a viewport sized to container and inserts its surface.
func Create(container Container, opts Options, log *zap.Logger) (*Viewport, error) {
	if container == nil {
		return nil, fmt.Errorf("create viewport: nil container")
	}
	if opts.MinDistance > opts.MaxDistance {
		return nil, fmt.Errorf("create viewport: min distance %v exceeds max %v", opts.MinDistance, opts.MaxDistance)
	}

	camera := render.NewCamera()
	camera.SetFOV(render.Degrees(opts.FOVDegrees))
	camera.SetClipPlanes(opts.Near, opts.Far)
	camera.SetDistance(clamp(opts.Distance, opts.MinDistance, opts.MaxDistance))

	v := &Viewport{
		container: container,
		opts:      opts,
		camera:    camera,
		log:       logger.OrNop(log).Named("viewport"),
	}
	v.replaceSurface(container.Size())
	v.log.Debug("viewport created", zap.Int("cols", v.fb.Width), zap.Int("rows", v.fb.Height/2))
	return v, nil
}

// replaceSurface swaps in a framebuffer for size. Callers hold mu.
func (v *Viewport) replaceSurface(size Size) {
	if v.fb != nil {
		v.container.Remove(v.fb)
	}
	v.fb = render.NewFramebuffer(size.Cols, size.Rows)
	v.raster = render.NewRasterizer(v.camera, v.fb)
	v.raster.CullBackfaces = v.opts.CullBackfaces
	if v.fb.Height > 0 {
		v.camera.SetAspectRatio(float64(v.fb.Width) / float64(v.fb.Height))
	}
	v.container.Insert(v.fb)
}

// Attach adds a model to the scene.
func (v *Viewport) Attach(m *models.Model) error {
	if m == nil {
		return fmt.Errorf("attach: nil model")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	v.models = append(v.models, m)
	return nil
}

// HasModel reports whether at least one model is attached.
func (v *Viewport) HasModel() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return false, ErrDestroyed
	}
	return len(v.models) > 0, nil
}

// Models returns the attached models.
func (v *Viewport) Models() ([]*models.Model, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return nil, ErrDestroyed
	}
	return slices.Clone(v.models), nil
}

// Render draws one frame and presents it. Rendering an unchanged scene
// produces an identical frame.
func (v *Viewport) Render() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}

	v.raster.Clear(v.opts.Background)
	for _, m := range v.models {
		v.raster.DrawModel(m, v.opts.Lighting)
	}
	v.frames++
	if err := v.container.Present(v.fb); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	return nil
}

// Resize replaces the surface and recomputes the camera aspect.
func (v *Viewport) Resize(size Size) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	v.replaceSurface(size)
	return nil
}

// Rotate adds dyaw to every model's Y rotation and dpitch to its X rotation.
// It returns ErrNoModel, changing nothing, when no model is attached.
func (v *Viewport) Rotate(dyaw, dpitch float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.controllable(); err != nil {
		return err
	}
	for _, m := range v.models {
		m.Rotation.Y += dyaw
		m.Rotation.X += dpitch
	}
	return nil
}

// Zoom moves the camera delta units along its line of sight, clamped to the
// configured distance bounds. It returns ErrNoModel when no model is attached.
func (v *Viewport) Zoom(delta float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.controllable(); err != nil {
		return err
	}
	d := clamp(v.camera.Distance()+delta, v.opts.MinDistance, v.opts.MaxDistance)
	v.camera.SetDistance(d)
	return nil
}

// controllable must be called with v.mu held.
func (v *Viewport) controllable() error {
	if v.destroyed {
		return ErrDestroyed
	}
	if len(v.models) == 0 {
		return ErrNoModel
	}
	return nil
}

// ResetRotation zeroes every model's rotation.
func (v *Viewport) ResetRotation() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	for _, m := range v.models {
		m.ResetRotation()
	}
	return nil
}

// Distance returns the camera's distance from the origin.
func (v *Viewport) Distance() (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return 0, ErrDestroyed
	}
	return v.camera.Distance(), nil
}

// CameraPosition returns the camera position.
func (v *Viewport) CameraPosition() (math3d.Vec3, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return math3d.Vec3{}, ErrDestroyed
	}
	return v.camera.Position, nil
}

// Aspect returns the camera's current aspect ratio.
func (v *Viewport) Aspect() (float64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return 0, ErrDestroyed
	}
	return v.camera.AspectRatio, nil
}

// Surface returns the current framebuffer.
func (v *Viewport) Surface() (*render.Framebuffer, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return nil, ErrDestroyed
	}
	return v.fb, nil
}

// Stats reports the last frame's rasterizer counters and the frame count.
func (v *Viewport) Stats() (render.Stats, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return render.Stats{}, 0, ErrDestroyed
	}
	return v.raster.Stats, v.frames, nil
}

// Snapshot writes the last rendered frame as a PNG.
func (v *Viewport) Snapshot(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	return v.fb.SavePNG(path)
}

// Destroy removes the surface from the container and drops the scene.
func (v *Viewport) Destroy() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	v.destroyed = true
	v.container.Remove(v.fb)
	v.models = nil
	v.log.Debug("viewport destroyed", zap.Int("frames", v.frames))
	return nil
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
