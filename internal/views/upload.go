package views

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/eshwanthkartitr/sih-draft/internal/download"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/upload"
)

// TipInterval is how often a new tip is shown while processing.
const TipInterval = 5 * time.Second

// Tips are shown at random while an upload is processed.
var Tips = []string{
	"Tip: Don't forget to water your plants!",
	"Tip: Always carry a towel.",
	"Tip: Never trust a computer you can't throw out a window.",
	"Tip: If at first you don't succeed, call it version 1.0.",
	"Tip: To err is human, to debug is divine.",
	"Tip: There are 10 types of people in the world: those who understand binary and those who don't.",
	"Tip: Why do programmers prefer dark mode? Because light attracts bugs!",
	"Tip: A clean house is a sign of a broken computer.",
	"Tip: I would love to change the world, but they won't give me the source code.",
	"Tip: Programming is like writing a book... except if you miss out a single comma on page 126 the whole thing makes no sense.",
}

// UploadView is the state of the upload page.
type UploadView struct {
	rnd *rand.Rand

	mu      sync.Mutex
	file    string
	state   loader.State
	stage   upload.Stage
	tip     string
	tipAt   time.Time
	message string
	files   download.Files
}

// NewUploadView creates an idle upload page. seed fixes the tip order.
func NewUploadView(seed uint64) *UploadView {
	return &UploadView{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Begin records the file being uploaded and clears earlier results.
func (u *UploadView) Begin(file string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.file = file
	u.message = ""
	u.files = download.Files{}
	u.tip = ""
	u.tipAt = time.Time{}
}

// SetState applies a session update. A failure becomes the page message.
func (u *UploadView) SetState(st loader.State, stage upload.Stage) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state, u.stage = st, stage
	if st.Phase == loader.Failed {
		u.message = Message(st.Err)
	}
}

// SetError shows err without changing the upload state, as for a rejected
// file or a failed download.
func (u *UploadView) SetError(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.message = Message(err)
}

// SetDownloaded records where the model files were written.
func (u *UploadView) SetDownloaded(files download.Files) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files = files
	u.message = "Saved " + files.OBJ + " and " + files.MTL
}

// Tick picks a new tip every TipInterval while processing.
func (u *UploadView) Tick(now time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state.Phase != loader.Loading {
		return
	}
	if u.tipAt.IsZero() {
		u.tipAt = now
		return
	}
	if now.Sub(u.tipAt) >= TipInterval {
		u.tip = Tips[u.rnd.IntN(len(Tips))]
		u.tipAt = now
	}
}

// Lines renders the page as text, top to bottom.
func (u *UploadView) Lines() []string {
	u.mu.Lock()
	defer u.mu.Unlock()

	lines := []string{
		"3D Model Generator",
		"Transform your 2D images into 3D models",
		"",
	}
	switch u.state.Phase {
	case loader.Idle, loader.Failed:
		lines = append(lines, "Press u to choose an image")
	case loader.Loading:
		lines = append(lines,
			"Processing "+u.file+" ("+u.stage.String()+")",
			ProgressBar(u.state.Progress, 40))
		if u.tip != "" {
			lines = append(lines, u.tip)
		}
	case loader.Ready:
		lines = append(lines,
			"Your 3D model is ready!",
			"Press o to download model.obj and model.mtl, v to view it")
	}
	if u.message != "" {
		lines = append(lines, "", u.message)
	}
	return lines
}

// State returns the last applied session state.
func (u *UploadView) State() loader.State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Tip returns the tip on display.
func (u *UploadView) Tip() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tip
}

// Message returns the page message.
func (u *UploadView) Message() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.message
}
