package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/download"
	"github.com/eshwanthkartitr/sih-draft/internal/interaction"
	"github.com/eshwanthkartitr/sih-draft/internal/lifecycle"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/internal/upload"
	"github.com/eshwanthkartitr/sih-draft/internal/viewport"
	"github.com/eshwanthkartitr/sih-draft/internal/views"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

// keyRotateStep is the rotation applied per arrow or wasd key press.
const keyRotateStep = 0.1

// ErrNoUploadBackend is shown when the upload page has no session.
var ErrNoUploadBackend = errors.New("no upload backend configured")

// Options configure an App.
type Options struct {
	Start     views.View
	Lifecycle lifecycle.Options
	Loader    *loader.Loader
	Session   *upload.Session // nil disables uploads

	ImagePath   string // image sent by the upload key
	DownloadDir string
	Seed        uint64 // tip order

	// Resize is called with the new terminal size before anything is drawn
	// at that size.
	Resize func(width, height int) error

	Log *zap.Logger
}

// App runs the toggle, viewer and upload views on one terminal screen.
type App struct {
	screen Screen
	opts   Options
	log    *zap.Logger
	drawMu sync.Mutex

	router     *views.Router
	tc         *views.TransitionCoordinator
	toggle     *views.Toggle
	uploadView *views.UploadView
	hub        *interaction.Hub
	hud        *HUD
	indicator  *Indicator
	pane       *Pane

	ctx  context.Context
	life *lifecycle.Lifecycle

	mu     sync.Mutex
	assets lifecycle.Options
}

// NewApp creates an app drawing on screen.
func NewApp(screen Screen, opts Options) *App {
	log := logger.OrNop(opts.Log).Named("tui")
	if opts.Lifecycle.FPS <= 0 {
		opts.Lifecycle.FPS = 30
	}
	if opts.Loader == nil {
		opts.Loader = loader.New(nil, log)
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}

	a := &App{
		screen:     screen,
		opts:       opts,
		log:        log,
		router:     views.NewRouter(opts.Start),
		uploadView: views.NewUploadView(opts.Seed),
		hub:        interaction.NewHub(),
		hud:        NewHUD(),
		indicator:  &Indicator{},
		assets:     opts.Lifecycle,
	}
	a.tc = views.NewTransitionCoordinator(a.router, opts.Lifecycle.FPS)
	a.toggle = views.NewToggle(a.tc)

	a.pane = NewPane(screen, &a.drawMu, screen.Bounds())
	a.pane.offset = a.slideRows
	a.pane.overlay = func(scr uv.Screen, area uv.Rectangle) {
		a.hud.Frame(time.Now())
		a.indicator.Draw(scr, area)
		a.hud.Draw(scr, area)
	}

	if opts.Session != nil {
		opts.Session.OnState(a.uploadView.SetState)
	}
	return a
}

// Router exposes the app's navigation.
func (a *App) Router() *views.Router { return a.router }

// Run handles events until ctx ends, the events channel closes or the user
// quits. The viewer is unmounted before Run returns.
func (a *App) Run(ctx context.Context, events <-chan uv.Event) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx

	a.router.OnNavigate(func(from, to views.View) {
		a.log.Debug("navigate", zap.Stringer("from", from), zap.Stringer("to", to))
		if from == views.ViewHome {
			a.unmount()
		}
		if to == views.ViewHome {
			a.mount()
		}
	})
	defer a.unmount()

	if a.router.Current() == views.ViewHome {
		a.mount()
	}

	ticker := time.NewTicker(time.Second / time.Duration(a.opts.Lifecycle.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.tc.Tick(now)
			a.uploadView.Tick(now)
			if err := a.draw(); err != nil {
				return fmt.Errorf("draw: %w", err)
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := a.handle(ev); quit {
				return nil
			}
		}
	}
}

func (a *App) mount() {
	a.mu.Lock()
	opts := a.assets
	a.mu.Unlock()

	a.hud.SetModel(filepath.Base(opts.GeometryURL), 0)
	a.hud.SetMessage("")

	life := lifecycle.New(opts, a.opts.Loader, a.hub, a.indicator, a.log)
	life.OnState(func(st loader.State) {
		switch st.Phase {
		case loader.Ready:
			a.hud.SetModel(st.Model.Mesh.Name, st.Model.Mesh.TriangleCount())
			a.hud.SetMessage("")
		case loader.Failed:
			a.hud.SetMessage(views.Message(st.Err) + " Press ctrl+r to retry.")
		}
	})
	if err := life.Mount(a.ctx, a.pane); err != nil {
		a.log.Error("mount failed", zap.Error(err))
		a.hud.SetMessage(views.Message(err))
		return
	}
	a.life = life
}

func (a *App) unmount() {
	if a.life == nil {
		return
	}
	if err := a.life.Unmount(); err != nil {
		a.log.Warn("unmount failed", zap.Error(err))
	}
	a.life = nil
}

func (a *App) viewport() *viewport.Viewport {
	if a.life == nil {
		return nil
	}
	vp, err := a.life.Viewport()
	if err != nil {
		return nil
	}
	return vp
}

// slideRows is how many rows a page entering from below is still offset.
func (a *App) slideRows(rows int) int {
	return int(math.Round(a.tc.SlideOffset() * float64(rows)))
}

func (a *App) handle(ev uv.Event) (quit bool) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		a.resize(ev.Width, ev.Height)
	case uv.KeyPressEvent:
		return a.key(KeyAction(ev))
	case uv.MouseClickEvent:
		switch a.router.Current() {
		case views.ViewToggle:
			if uv.Pos(ev.X, ev.Y).In(a.toggleRect()) {
				a.toggle.Click(time.Now())
			}
		case views.ViewHome:
			a.pointer(ev)
		}
	case uv.MouseMotionEvent, uv.MouseReleaseEvent, uv.MouseWheelEvent:
		if a.router.Current() == views.ViewHome {
			a.pointer(ev)
		}
	}
	return false
}

func (a *App) pointer(ev uv.Event) {
	if pe, ok := Translate(ev, a.pane.Area()); ok {
		a.hub.Emit(pe)
	}
}

func (a *App) resize(width, height int) {
	a.drawMu.Lock()
	if a.opts.Resize != nil {
		if err := a.opts.Resize(width, height); err != nil {
			a.log.Warn("terminal resize failed", zap.Error(err))
		}
	}
	a.pane.SetArea(uv.Rect(0, 0, width, height))
	a.drawMu.Unlock()

	if vp := a.viewport(); vp != nil {
		if err := vp.Resize(a.pane.Size()); err != nil {
			a.log.Warn("viewport resize failed", zap.Error(err))
		}
	}
}

func (a *App) key(action Action) (quit bool) {
	switch action {
	case ActionQuit:
		return true
	case ActionToggleHUD:
		a.hud.Toggle()
		return false
	case ActionNext:
		a.router.Next()
		return false
	}

	switch a.router.Current() {
	case views.ViewToggle:
		if action == ActionSwitch {
			a.toggle.Click(time.Now())
		}
	case views.ViewHome:
		a.homeKey(action)
	case views.ViewUpload:
		a.uploadKey(action)
	}
	return false
}

func (a *App) homeKey(action Action) {
	vp := a.viewport()
	if vp == nil {
		return
	}
	zoom := a.opts.Lifecycle.ZoomSensitivity
	if zoom <= 0 {
		zoom = interaction.DefaultZoomSensitivity
	}

	var err error
	switch action {
	case ActionReset:
		if err := a.life.ResetView(); err != nil {
			a.log.Debug("reset failed", zap.Error(err))
		}
	case ActionZoomIn:
		err = vp.Zoom(-zoom)
	case ActionZoomOut:
		err = vp.Zoom(zoom)
	case ActionYawLeft:
		err = vp.Rotate(-keyRotateStep, 0)
	case ActionYawRight:
		err = vp.Rotate(keyRotateStep, 0)
	case ActionPitchUp:
		err = vp.Rotate(0, -keyRotateStep)
	case ActionPitchDown:
		err = vp.Rotate(0, keyRotateStep)
	case ActionRetry:
		if err := a.life.Retry(a.ctx); err != nil {
			a.log.Debug("retry ignored", zap.Error(err))
		}
	case ActionDownload, ActionExportGLB:
		a.saveModel(vp, action == ActionExportGLB)
	case ActionSnapshot:
		path := filepath.Join(a.opts.DownloadDir, fmt.Sprintf("snapshot-%d.png", time.Now().Unix()))
		if err := vp.Snapshot(path); err != nil {
			a.hud.SetMessage(views.Message(err))
			return
		}
		a.hud.SetMessage("Saved " + path)
	}
	if err != nil {
		a.log.Debug("control ignored", zap.Int("action", int(action)), zap.Error(err))
	}
}

func (a *App) saveModel(vp *viewport.Viewport, glb bool) {
	ms, err := vp.Models()
	if err != nil || len(ms) == 0 {
		a.hud.SetMessage(views.Message(download.ErrMissingResource))
		return
	}
	if glb {
		path, err := download.SaveGLB(ms[0], a.opts.DownloadDir)
		if err != nil {
			a.hud.SetMessage(views.Message(err))
			return
		}
		a.hud.SetMessage("Saved " + path)
		return
	}
	files, err := download.FromModel(ms[0], a.opts.DownloadDir)
	if err != nil {
		a.hud.SetMessage(views.Message(err))
		return
	}
	a.hud.SetMessage("Saved " + files.OBJ + " and " + files.MTL)
}

func (a *App) uploadKey(action Action) {
	s := a.opts.Session
	switch action {
	case ActionUpload:
		if s == nil {
			a.uploadView.SetError(ErrNoUploadBackend)
			return
		}
		a.startUpload(s)
	case ActionDownload:
		if s == nil {
			a.uploadView.SetError(download.ErrMissingResource)
			return
		}
		files, err := s.Download(a.ctx, a.opts.DownloadDir)
		if err != nil {
			a.uploadView.SetError(err)
			return
		}
		a.uploadView.SetDownloaded(files)
	case ActionView:
		if s == nil {
			return
		}
		res, ok := s.Result()
		if !ok {
			a.uploadView.SetError(download.ErrMissingResource)
			return
		}
		a.mu.Lock()
		a.assets.MaterialsURL, a.assets.GeometryURL = res.MTLURL, res.OBJURL
		a.mu.Unlock()
		a.router.Navigate(views.ViewHome)
	}
}

func (a *App) startUpload(s *upload.Session) {
	path := a.opts.ImagePath
	if path == "" {
		a.uploadView.SetError(upload.ErrInvalidFileType)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.uploadView.SetError(err)
		return
	}
	name := filepath.Base(path)
	if _, err := upload.ValidateImage(data); err != nil {
		a.uploadView.SetError(err)
		return
	}

	a.uploadView.Begin(name)
	go func() {
		err := s.Upload(a.ctx, name, data)
		if errors.Is(err, upload.ErrBusy) {
			a.uploadView.SetError(err)
		}
	}()
}

// draw repaints the toggle and upload pages. The viewer draws itself from
// its render loop.
func (a *App) draw() error {
	view := a.router.Current()
	if view == views.ViewHome {
		return nil
	}

	a.drawMu.Lock()
	defer a.drawMu.Unlock()

	area := a.pane.Area()
	fill(a.screen, area, render.ColorBlack)
	off := a.slideRows(area.Dy())
	switch view {
	case views.ViewToggle:
		a.drawToggle(area, off)
	case views.ViewUpload:
		a.drawUpload(area, off)
	}
	return a.screen.Display()
}

func (a *App) toggleRect() uv.Rectangle {
	area := a.pane.Area()
	labels := a.toggle.Labels()
	pad := int(math.Round(2 * a.tc.Zoom()))
	w := len(labels[0]) + len(labels[1]) + 4*pad + 1
	x := area.Min.X + max((area.Dx()-w)/2, 0)
	y := area.Min.Y + area.Dy()/2
	return uv.Rect(x, y, w, 1)
}

func (a *App) drawToggle(area uv.Rectangle, off int) {
	labels := a.toggle.Labels()
	r := a.toggleRect()
	pad := (r.Dx() - len(labels[0]) - len(labels[1]) - 1) / 4
	spaces := func(n int) string { return fmt.Sprintf("%*s", n, "") }

	styles := [2]uv.Style{dimStyle, dimStyle}
	styles[a.toggle.Mode()] = accentStyle
	styles[a.toggle.Mode()].Attrs |= uv.AttrReverse

	y := r.Min.Y + off
	x := drawText(a.screen, r.Min.X, y, spaces(pad)+labels[0]+spaces(pad), styles[0])
	x = drawText(a.screen, x, y, "|", textStyle)
	drawText(a.screen, x, y, spaces(pad)+labels[1]+spaces(pad), styles[1])

	drawCentered(a.screen, area, y+2, "space: switch  n: skip  q: quit", dimStyle)
}

func (a *App) drawUpload(area uv.Rectangle, off int) {
	lines := a.uploadView.Lines()
	y := area.Min.Y + max((area.Dy()-len(lines))/2, 0) + off
	for i, line := range lines {
		style := textStyle
		if i == 0 {
			style = accentStyle
		}
		drawCentered(a.screen, area, y+i, line, style)
	}
	drawText(a.screen, area.Min.X, area.Max.Y-1, " u: upload  o: download  v: view  n: back  q: quit ", dimStyle)
}
