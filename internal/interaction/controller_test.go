package interaction

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap/zaptest"
)

// fakeTarget accumulates rotation and zoom like a viewport with one model.
type fakeTarget struct {
	hasModel   bool
	yaw, pitch float64
	distance   float64
	rotations  int
}

var errNoModel = errors.New("no model")

func (f *fakeTarget) Rotate(dyaw, dpitch float64) error {
	if !f.hasModel {
		return errNoModel
	}
	f.yaw += dyaw
	f.pitch += dpitch
	f.rotations++
	return nil
}

func (f *fakeTarget) Zoom(delta float64) error {
	if !f.hasModel {
		return errNoModel
	}
	f.distance += delta
	return nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDragRotatesOnce(t *testing.T) {
	target := &fakeTarget{hasModel: true}
	c := NewController(target, 0.03, 0.5, zaptest.NewLogger(t))

	c.Handle(Event{Kind: PointerDown, Pos: Point{10, 10}})
	c.Handle(Event{Kind: PointerMove, Pos: Point{14, 7}})
	c.Handle(Event{Kind: PointerUp, Pos: Point{30, 30}})
	c.Handle(Event{Kind: PointerMove, Pos: Point{40, 40}})

	if !near(target.yaw, 4*0.03) || !near(target.pitch, -3*0.03) {
		t.Errorf("rotation = (%v, %v), want (%v, %v)", target.yaw, target.pitch, 4*0.03, -3*0.03)
	}
	if target.rotations != 1 {
		t.Errorf("rotations applied = %d, want 1", target.rotations)
	}
	if c.DragState().Dragging {
		t.Error("still dragging after pointer up")
	}
}

func TestDragAccumulatesFromLastPosition(t *testing.T) {
	target := &fakeTarget{hasModel: true}
	c := NewController(target, 0.1, 0, nil)

	c.Handle(Event{Kind: PointerDown, Pos: Point{0, 0}})
	for _, p := range []Point{{1, 0}, {3, 1}, {3, 1}, {2, 4}} {
		c.Handle(Event{Kind: PointerMove, Pos: p})
	}

	if !near(target.yaw, 0.2) || !near(target.pitch, 0.4) {
		t.Errorf("rotation = (%v, %v), want (0.2, 0.4)", target.yaw, target.pitch)
	}
	if target.rotations != 3 {
		t.Errorf("rotations = %d, want 3 (zero deltas skipped)", target.rotations)
	}
	if got := c.DragState().Last; got != (Point{2, 4}) {
		t.Errorf("last = %v, want {2 4}", got)
	}
}

func TestTerminatingEventsApplyNoRotation(t *testing.T) {
	for _, kind := range []Kind{PointerUp, PointerLeave} {
		t.Run(kind.String(), func(t *testing.T) {
			target := &fakeTarget{hasModel: true}
			c := NewController(target, 0.03, 0.5, nil)

			c.Handle(Event{Kind: PointerDown, Pos: Point{5, 5}})
			c.Handle(Event{Kind: kind, Pos: Point{50, 50}})

			if target.rotations != 0 {
				t.Errorf("%v applied rotation", kind)
			}
			if c.DragState().Dragging {
				t.Errorf("%v left drag active", kind)
			}
		})
	}
}

func TestMoveWithoutDragIgnored(t *testing.T) {
	target := &fakeTarget{hasModel: true}
	c := NewController(target, 0.03, 0.5, nil)
	c.Handle(Event{Kind: PointerMove, Pos: Point{3, 3}})
	if target.rotations != 0 {
		t.Error("hover rotated the model")
	}
}

func TestWheelZoom(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   float64
	}{
		{"up zooms in", []float64{-1}, -0.5},
		{"down zooms out", []float64{1, 1}, 1},
		{"zero ignored", []float64{0}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := &fakeTarget{hasModel: true}
			c := NewController(target, 0, 0, nil)
			for _, d := range tc.deltas {
				c.Handle(Event{Kind: Wheel, DeltaY: d})
			}
			if !near(target.distance, tc.want) {
				t.Errorf("distance = %v, want %v", target.distance, tc.want)
			}
		})
	}
}

func TestNoModelIsNoOp(t *testing.T) {
	target := &fakeTarget{}
	c := NewController(target, 0.03, 0.5, zaptest.NewLogger(t))

	c.Handle(Event{Kind: PointerDown, Pos: Point{0, 0}})
	c.Handle(Event{Kind: PointerMove, Pos: Point{10, 10}})
	c.Handle(Event{Kind: Wheel, DeltaY: 1})

	if target.yaw != 0 || target.pitch != 0 || target.distance != 0 {
		t.Errorf("target changed without a model: %+v", target)
	}
	if !c.DragState().Dragging {
		t.Error("pointer down should still be accepted")
	}
}

func TestBindAndRemove(t *testing.T) {
	hub := NewHub()
	target := &fakeTarget{hasModel: true}
	c := NewController(target, 1, 1, nil)

	remove := c.Bind(hub)
	if hub.Len() != 1 {
		t.Fatalf("hub has %d handlers, want 1", hub.Len())
	}
	hub.Emit(Event{Kind: PointerDown})
	hub.Emit(Event{Kind: PointerMove, Pos: Point{1, 0}})

	remove()
	remove()
	if hub.Len() != 0 {
		t.Fatalf("hub has %d handlers after remove, want 0", hub.Len())
	}
	hub.Emit(Event{Kind: PointerMove, Pos: Point{5, 0}})

	if target.yaw != 1 {
		t.Errorf("yaw = %v, want 1", target.yaw)
	}
}

func TestHubOrder(t *testing.T) {
	hub := NewHub()
	var got []int
	hub.Listen(func(Event) { got = append(got, 1) })
	removeSecond := hub.Listen(func(Event) { got = append(got, 2) })
	hub.Listen(func(Event) { got = append(got, 3) })

	hub.Emit(Event{})
	removeSecond()
	hub.Emit(Event{})

	want := []int{1, 2, 3, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}
