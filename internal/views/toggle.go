package views

import "time"

// Mode is the toggle's selected side.
type Mode int

const (
	Mode2D Mode = iota
	Mode3D
)

func (m Mode) String() string {
	if m == Mode3D {
		return "3D Creator"
	}
	return "2D Visualizer"
}

// Toggle is the entry screen's two-way switch. The first click flips the
// mode and sends the user on to the viewer.
type Toggle struct {
	mode   Mode
	clicks int
	tc     *TransitionCoordinator
}

// NewToggle creates a toggle in 2D mode.
func NewToggle(tc *TransitionCoordinator) *Toggle {
	return &Toggle{tc: tc}
}

// Click flips the mode and, on the first click, schedules the zoom and the
// move to the viewer.
func (t *Toggle) Click(now time.Time) {
	if t.mode == Mode2D {
		t.mode = Mode3D
	} else {
		t.mode = Mode2D
	}
	t.clicks++
	if t.clicks == 1 && t.tc != nil {
		t.tc.ScheduleNavigate(ViewHome, now, NavigateDelay)
	}
}

// Mode returns the selected side.
func (t *Toggle) Mode() Mode { return t.mode }

// Labels returns both side labels in display order.
func (t *Toggle) Labels() [2]string {
	return [2]string{Mode2D.String(), Mode3D.String()}
}
