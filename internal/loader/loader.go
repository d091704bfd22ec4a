package loader

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // map_Kd decoders
	_ "image/png"
	"io"
	"path"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
)

// Loader starts load attempts.
type Loader struct {
	fetcher Fetcher
	log     *zap.Logger
}

// New creates a loader. A nil fetcher uses DefaultFetcher.
func New(fetcher Fetcher, log *zap.Logger) *Loader {
	if fetcher == nil {
		fetcher = DefaultFetcher{}
	}
	return &Loader{fetcher: fetcher, log: logger.OrNop(log).Named("loader")}
}

// Attempt is one materials-then-geometry load. It starts in Loading and
// reaches exactly one of Ready or Failed.
type Attempt struct {
	materialsURL string
	geometryURL  string

	mu    sync.Mutex
	state State

	// deliver serializes subscriber calls and registration so that every
	// subscriber sees transitions in order and exactly once.
	deliver sync.Mutex
	subs    []*subscriber

	cancel context.CancelFunc
	done   chan struct{}
}

type subscriber struct {
	fn      func(State)
	stopped atomic.Bool
}

// Load begins fetching asynchronously and returns immediately. Cancelling
// ctx (or calling Cancel) fails the attempt if it has not finished.
func (l *Loader) Load(ctx context.Context, materialsURL, geometryURL string) *Attempt {
	ctx, cancel := context.WithCancel(ctx)
	a := &Attempt{
		materialsURL: materialsURL,
		geometryURL:  geometryURL,
		state:        State{Phase: Loading},
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	go l.run(ctx, a)
	return a
}

// State returns the current snapshot.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe calls fn with the current state and then with every later
// transition, sequentially. fn must not call Subscribe. The returned func
// stops delivery without waiting for a call already in progress.
func (a *Attempt) Subscribe(fn func(State)) (unsubscribe func()) {
	s := &subscriber{fn: fn}
	a.deliver.Lock()
	a.subs = append(a.subs, s)
	fn(a.State())
	a.deliver.Unlock()

	return func() { s.stopped.Store(true) }
}

// Cancel aborts the attempt. It is a no-op once terminal.
func (a *Attempt) Cancel() {
	a.cancel()
}

// Done is closed when the attempt reaches Ready or Failed.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt is terminal or ctx ends.
func (a *Attempt) Wait(ctx context.Context) (State, error) {
	select {
	case <-a.done:
		return a.State(), nil
	case <-ctx.Done():
		return a.State(), ctx.Err()
	}
}

// transition moves to next if allowed and notifies subscribers.
func (a *Attempt) transition(next State) {
	a.deliver.Lock()
	defer a.deliver.Unlock()

	a.mu.Lock()
	cur := a.state
	if cur.Phase.Terminal() {
		a.mu.Unlock()
		return
	}
	if next.Phase == Loading && next.Progress <= cur.Progress {
		a.mu.Unlock()
		return
	}
	if next.Phase == Ready {
		next.Progress = 100
	} else if next.Progress < cur.Progress {
		next.Progress = cur.Progress
	}
	a.state = next
	a.mu.Unlock()

	for _, s := range a.subs {
		if !s.stopped.Load() {
			s.fn(next)
		}
	}
	if next.Phase.Terminal() {
		a.cancel()
		close(a.done)
	}
}

func (l *Loader) run(ctx context.Context, a *Attempt) {
	log := l.log.With(zap.String("materials", a.materialsURL), zap.String("geometry", a.geometryURL))
	log.Debug("load started")

	model, err := l.load(ctx, a, log)
	if err == nil {
		// A cancellation racing with the last byte still fails the attempt.
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("load cancelled")
		} else {
			log.Warn("load failed", zap.Error(err))
		}
		a.transition(State{Phase: Failed, Err: err})
		return
	}

	log.Info("load finished",
		zap.Int("triangles", model.Mesh.TriangleCount()),
		zap.Int("materials", model.Mesh.MaterialCount()))
	a.transition(State{Phase: Ready, Model: model})
}

func (l *Loader) load(ctx context.Context, a *Attempt, log *zap.Logger) (*models.Model, error) {
	var lib *models.MaterialLib
	if a.materialsURL != "" {
		var err error
		if lib, err = l.loadMaterials(ctx, a.materialsURL, log); err != nil {
			return nil, err
		}
	}

	rc, size, err := l.fetcher.Fetch(ctx, a.geometryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: geometry %s: %w", ErrTransport, a.geometryURL, err)
	}
	defer rc.Close()

	pr := &progressReader{
		r:     rc,
		total: size,
		report: func(pct float64) {
			a.transition(State{Phase: Loading, Progress: pct})
		},
	}

	name := path.Base(a.geometryURL)
	var mesh *models.Mesh
	if isGLTF(a.geometryURL) {
		mesh, err = models.DecodeGLB(pr, name)
	} else {
		mesh, err = models.ParseOBJ(pr, name, lib)
	}
	if err != nil {
		var perr *models.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: geometry %s: %w", ErrParse, a.geometryURL, err)
		}
		return nil, fmt.Errorf("%w: geometry %s: %w", ErrTransport, a.geometryURL, err)
	}

	a.transition(State{Phase: Loading, Progress: 100})
	return models.NewModel(mesh), nil
}

func (l *Loader) loadMaterials(ctx context.Context, ref string, log *zap.Logger) (*models.MaterialLib, error) {
	rc, _, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: materials %s: %w", ErrTransport, ref, err)
	}
	defer rc.Close()

	lib, err := models.ParseMTL(rc)
	if err != nil {
		var perr *models.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: materials %s: %w", ErrParse, ref, err)
		}
		return nil, fmt.Errorf("%w: materials %s: %w", ErrTransport, ref, err)
	}

	// Missing textures degrade to flat Kd color.
	for _, tex := range lib.TextureRefs() {
		img, err := l.loadTexture(ctx, Resolve(ref, tex))
		if err != nil {
			log.Warn("texture unavailable", zap.String("texture", tex), zap.Error(err))
			continue
		}
		lib.SetTexture(tex, img)
	}
	return lib, nil
}

func (l *Loader) loadTexture(ctx context.Context, ref string) (image.Image, error) {
	rc, _, err := l.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(io.LimitReader(rc, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}
