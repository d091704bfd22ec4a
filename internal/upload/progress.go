package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

// Progress is one processing update pushed by the backend.
type Progress struct {
	File    string  `json:"file,omitempty"`
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
}

// Stage values carried in Progress messages.
const (
	ProgressProcessing = "processing"
	ProgressDone       = "done"
)

// WatchProgress reads progress messages from the websocket at wsURL and
// passes those for file to fn until the ProgressDone message for file
// arrives, the server closes the connection or ctx ends. Messages naming
// another file are skipped; an empty file accepts every message.
func WatchProgress(ctx context.Context, wsURL, file string, fn func(Progress), log *zap.Logger) error {
	log = logger.OrNop(log).Named("progress")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	defer stop()

	for {
		var p Progress
		if err := conn.ReadJSON(&p); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("read progress: %w", err)
		}
		if file != "" && p.File != file {
			log.Debug("skipped progress", zap.String("file", p.File))
			continue
		}
		log.Debug("progress", zap.String("stage", p.Stage), zap.Float64("percent", p.Percent))
		fn(p)
		if p.Stage == ProgressDone {
			return nil
		}
	}
}
