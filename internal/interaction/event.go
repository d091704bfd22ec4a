// Package interaction turns pointer and wheel events into model rotation and
// camera zoom.
package interaction

import "fmt"

// Kind identifies a pointer event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	Wheel
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	case Wheel:
		return "wheel"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Point is a pointer position in surface cells.
type Point struct {
	X, Y int
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Event is one pointer or wheel event. DeltaY is set for Wheel only;
// negative values scroll up.
type Event struct {
	Kind   Kind
	Pos    Point
	DeltaY float64
}

// Handler receives events in arrival order.
type Handler func(Event)

// EventSource delivers events to registered handlers. The returned function
// unregisters h; calling it more than once is harmless.
type EventSource interface {
	Listen(h Handler) (remove func())
}
