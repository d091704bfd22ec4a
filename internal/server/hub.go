package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/upload"
)

// progressHub fans processing updates out to websocket clients.
type progressHub struct {
	log *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	// latest update of each file still processing
	running map[string]upload.Progress
}

func newProgressHub(log *zap.Logger) *progressHub {
	return &progressHub{
		log:     log,
		clients: make(map[*websocket.Conn]bool),
		running: make(map[string]upload.Progress),
	}
}

// add registers conn and sends it the latest update of every running job.
func (h *progressHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	for _, p := range h.running {
		if err := conn.WriteJSON(p); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *progressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// broadcast sends p to every client, dropping the ones that fail.
func (h *progressHub) broadcast(p upload.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p.Stage == upload.ProgressDone {
		delete(h.running, p.File)
	} else {
		h.running[p.File] = p
	}

	for conn := range h.clients {
		if err := conn.WriteJSON(p); err != nil {
			h.log.Debug("websocket write failed, dropping client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// drop forgets the running job for file without notifying clients.
func (h *progressHub) drop(file string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.running, file)
}

func (h *progressHub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
