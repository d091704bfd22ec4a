package tui

import (
	"context"
	"fmt"
	"os"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h" // any-event tracking, SGR encoding
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

// RunTerminal takes over the controlling terminal and runs an App on it
// until ctx ends or the user quits. The terminal is restored on return.
func RunTerminal(ctx context.Context, opts Options) error {
	log := logger.OrNop(opts.Log)
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		log.Warn("initial resize failed", zap.Error(err))
	}
	fmt.Fprint(os.Stdout, mouseOn)

	defer func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Warn("terminal shutdown failed", zap.Error(err))
		}
	}()

	opts.Resize = func(w, h int) error {
		term.Erase()
		return term.Resize(w, h)
	}
	app := NewApp(term, opts)
	log.Info("terminal started", zap.Int("width", width), zap.Int("height", height),
		zap.Stringer("view", app.Router().Current()))
	return app.Run(ctx, term.Events())
}
