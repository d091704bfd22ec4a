package interaction

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

const (
	// DefaultSensitivity is radians of rotation per cell dragged.
	DefaultSensitivity = 0.03
	// DefaultZoomSensitivity is camera units per wheel notch.
	DefaultZoomSensitivity = 0.5
)

// Target receives the controller's output. Both methods return an error
// when nothing was changed, e.g. when no model is attached.
type Target interface {
	Rotate(dyaw, dpitch float64) error
	Zoom(delta float64) error
}

// DragState tracks an in-progress drag.
type DragState struct {
	Dragging bool
	Last     Point
}

// Controller applies drag rotation and wheel zoom to a Target.
type Controller struct {
	target          Target
	sensitivity     float64
	zoomSensitivity float64
	log             *zap.Logger

	mu   sync.Mutex
	drag DragState
}

// NewController creates a controller. Non-positive sensitivities fall back
// to the defaults.
func NewController(target Target, sensitivity, zoomSensitivity float64, log *zap.Logger) *Controller {
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	if zoomSensitivity <= 0 {
		zoomSensitivity = DefaultZoomSensitivity
	}
	return &Controller{
		target:          target,
		sensitivity:     sensitivity,
		zoomSensitivity: zoomSensitivity,
		log:             logger.OrNop(log).Named("interaction"),
	}
}

// Bind registers the controller on src and returns the unregister function.
func (c *Controller) Bind(src EventSource) (remove func()) {
	return src.Listen(c.Handle)
}

// Handle applies one event. Events are processed one at a time in the order
// Handle is called.
func (c *Controller) Handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case PointerDown:
		c.drag = DragState{Dragging: true, Last: ev.Pos}
	case PointerMove:
		if !c.drag.Dragging {
			return
		}
		d := ev.Pos.Sub(c.drag.Last)
		c.drag.Last = ev.Pos
		if d == (Point{}) {
			return
		}
		if err := c.target.Rotate(float64(d.X)*c.sensitivity, float64(d.Y)*c.sensitivity); err != nil {
			c.log.Debug("rotate ignored", zap.Error(err))
		}
	case PointerUp, PointerLeave:
		c.drag = DragState{}
	case Wheel:
		if ev.DeltaY == 0 {
			return
		}
		if err := c.target.Zoom(ev.DeltaY * c.zoomSensitivity); err != nil {
			c.log.Debug("zoom ignored", zap.Float64("delta", ev.DeltaY), zap.Error(err))
		}
	}
}

// DragState returns the current drag state.
func (c *Controller) DragState() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag
}
