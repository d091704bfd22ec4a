package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/download"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

// ErrBusy is returned when an upload is started while another is running.
var ErrBusy = errors.New("upload already in progress")

// Stage names the part of an upload currently running.
type Stage int

const (
	StageIdle Stage = iota
	StageUploading
	StageProcessing
	StageLoading
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageUploading:
		return "uploading"
	case StageProcessing:
		return "processing"
	case StageLoading:
		return "loading model"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Session runs uploads one at a time and keeps the last outcome. Its state
// uses the loader phases: Idle until the first accepted file, Loading while
// uploading and loading the returned model, then Ready or Failed. Progress
// covers backend processing in [0, 50] and the model load in [50, 100].
type Session struct {
	client      *Client
	loader      *loader.Loader
	fetcher     loader.Fetcher
	progressURL string
	log         *zap.Logger

	mu       sync.Mutex
	state    loader.State
	stage    Stage
	result   Result
	observer func(loader.State, Stage)
}

// SessionOptions configure a Session.
type SessionOptions struct {
	// ProgressURL is the backend websocket; empty disables progress.
	ProgressURL string
	Fetcher     loader.Fetcher
}

// NewSession creates an idle session.
func NewSession(client *Client, opts SessionOptions, log *zap.Logger) *Session {
	log = logger.OrNop(log)
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = loader.DefaultFetcher{}
	}
	return &Session{
		client:      client,
		loader:      loader.New(fetcher, log),
		fetcher:     fetcher,
		progressURL: opts.ProgressURL,
		log:         log.Named("session"),
	}
}

// OnState registers fn to receive every state change. Set it before the
// first Upload.
func (s *Session) OnState(fn func(loader.State, Stage)) {
	s.observer = fn
}

// State returns the current state.
func (s *Session) State() loader.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stage returns the running stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Result returns the model URLs of a successful upload.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state.Phase == loader.Ready
}

// Upload validates, submits and loads one image, blocking until the model
// is loaded or the upload fails. A file that is not an image is rejected
// with ErrInvalidFileType before any request and leaves the state as is.
func (s *Session) Upload(ctx context.Context, filename string, data []byte) error {
	format, err := ValidateImage(data)
	if err != nil {
		s.log.Warn("rejected upload", zap.String("file", filename), zap.Error(err))
		return err
	}

	if err := s.begin(); err != nil {
		return err
	}
	name := FileName(filename)
	s.log.Info("upload accepted", zap.String("file", name), zap.String("format", format))

	if s.progressURL != "" {
		watchCtx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go func() {
			err := WatchProgress(watchCtx, s.progressURL, name, func(p Progress) {
				s.advance(p.Percent/2, StageProcessing)
			}, s.log)
			if err != nil && watchCtx.Err() == nil {
				s.log.Debug("progress stream ended", zap.Error(err))
			}
		}()
	}

	res, err := s.client.Submit(ctx, name, data)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.result = res
	s.mu.Unlock()
	s.advance(50, StageLoading)

	attempt := s.loader.Load(ctx, res.MTLURL, res.OBJURL)
	unsubscribe := attempt.Subscribe(func(st loader.State) {
		if st.Phase == loader.Loading {
			s.advance(50+st.Progress/2, StageLoading)
		}
	})
	st, err := attempt.Wait(ctx)
	unsubscribe()
	if err != nil {
		attempt.Cancel()
		s.fail(err)
		return err
	}
	if st.Phase == loader.Failed {
		s.fail(st.Err)
		return st.Err
	}
	s.set(st, StageDone)
	return nil
}

// Download saves model.obj and model.mtl into dir. It returns
// download.ErrMissingResource unless the last upload finished.
func (s *Session) Download(ctx context.Context, dir string) (download.Files, error) {
	s.mu.Lock()
	st, res := s.state, s.result
	s.mu.Unlock()

	if st.Phase != loader.Ready {
		return download.Files{}, download.ErrMissingResource
	}
	if res.OBJURL != "" && res.MTLURL != "" {
		return download.FromURLs(ctx, s.fetcher, res.OBJURL, res.MTLURL, dir)
	}
	return download.FromModel(st.Model, dir)
}

// begin claims the session for one upload, returning ErrBusy if another
// upload holds it.
func (s *Session) begin() error {
	s.mu.Lock()
	if s.state.Phase == loader.Loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.result = Result{}
	s.state, s.stage = loader.State{Phase: loader.Loading}, StageUploading
	st, observer := s.state, s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(st, StageUploading)
	}
	return nil
}

func (s *Session) fail(err error) {
	s.log.Warn("upload failed", zap.Error(err))
	s.mu.Lock()
	s.result = Result{}
	s.mu.Unlock()
	s.set(loader.State{Phase: loader.Failed, Err: err}, StageIdle)
}

// advance raises the progress of a running upload. Lower values and late
// updates after a terminal state are dropped.
func (s *Session) advance(progress float64, stage Stage) {
	s.mu.Lock()
	if s.state.Phase != loader.Loading || progress < s.state.Progress {
		s.mu.Unlock()
		return
	}
	if stage < s.stage {
		stage = s.stage
	}
	s.state.Progress = min(progress, 100)
	s.stage = stage
	st, observer := s.state, s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(st, stage)
	}
}

func (s *Session) set(st loader.State, stage Stage) {
	s.mu.Lock()
	s.state, s.stage = st, stage
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(st, stage)
	}
}
