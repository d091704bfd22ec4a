// Package loader fetches a material library and its geometry, in that order,
// and reports progress through a per-attempt state machine.
package loader

import (
	"errors"
	"fmt"

	"github.com/eshwanthkartitr/sih-draft/pkg/models"
)

var (
	// ErrTransport wraps failures to reach or read a resource.
	ErrTransport = errors.New("transport error")
	// ErrParse wraps malformed material or geometry content.
	ErrParse = errors.New("parse error")
)

// Phase is a load attempt's position in Idle -> Loading -> Ready | Failed.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == Ready || p == Failed
}

// State is a snapshot of a load attempt. Model is set only when Ready, Err
// only when Failed. Progress is a percentage in [0, 100].
type State struct {
	Phase    Phase
	Progress float64
	Model    *models.Model
	Err      error
}

// StatusError is returned for HTTP responses outside 2xx.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}
