// Package server is a stand-in for the image-to-model backend. It stores
// uploads, fakes a processing delay and serves a placeholder model.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/logger"
	"github.com/eshwanthkartitr/sih-draft/internal/upload"
)

const (
	// PlaceholderOBJ is the single triangle returned for every upload.
	PlaceholderOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3"
	// PlaceholderMTL is the material library returned for every upload.
	PlaceholderMTL = "newmtl material0\nKa 1 1 1\nKd 1 1 1\nKs 0 0 0"

	progressSteps = 10
)

// Options configure the backend.
type Options struct {
	Addr            string
	UploadDir       string
	ProcessingDelay time.Duration
	MaxUploadBytes  int64
}

// Server serves /process-image, /download/{name} and /ws.
type Server struct {
	opts     Options
	log      *zap.Logger
	hub      *progressHub
	upgrader websocket.Upgrader
}

// New creates the upload directory and returns a server.
func New(opts Options, log *zap.Logger) (*Server, error) {
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if err := os.MkdirAll(opts.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	log = logger.OrNop(log).Named("server")
	return &Server{
		opts: opts,
		log:  log,
		hub:  newProgressHub(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the routes wrapped with CORS and no-cache headers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+upload.ProcessPath, s.handleProcess)
	mux.HandleFunc("GET /download/{name}", s.handleDownload)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.withHeaders(mux)
}

func (s *Server) withHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("serving", zap.String("addr", ln.Addr().String()), zap.String("uploads", s.opts.UploadDir))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func badRequest(w http.ResponseWriter) {
	http.Error(w, "Bad Request", http.StatusBadRequest)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		s.log.Debug("malformed upload", zap.Error(err))
		badRequest(w)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		badRequest(w)
		return
	}
	defer file.Close()

	name := upload.FileName(header.Filename)
	if name == "" {
		badRequest(w)
		return
	}
	if err := s.store(name, file); err != nil {
		s.log.Error("store upload", zap.String("file", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.log.Info("upload stored", zap.String("file", name), zap.Int64("bytes", header.Size))

	defer s.hub.drop(name)
	if !s.process(r.Context(), name) {
		s.log.Info("client went away during processing", zap.String("file", name))
		return
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	objName, mtlName := stem+".obj", stem+".mtl"
	for _, f := range []struct{ name, body string }{
		{objName, PlaceholderOBJ},
		{mtlName, PlaceholderMTL},
	} {
		if err := os.WriteFile(filepath.Join(s.opts.UploadDir, f.name), []byte(f.body), 0o644); err != nil {
			s.log.Error("write model", zap.String("file", f.name), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	s.hub.broadcast(upload.Progress{File: name, Stage: upload.ProgressDone, Percent: 100})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(upload.Result{
		OBJURL: "/download/" + objName,
		MTLURL: "/download/" + mtlName,
	})
}

func (s *Server) store(name string, r io.Reader) error {
	f, err := os.Create(filepath.Join(s.opts.UploadDir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// process stands in for model generation: it waits out the configured delay
// in steps, broadcasting progress. It reports false if ctx ends first.
func (s *Server) process(ctx context.Context, name string) bool {
	if s.opts.ProcessingDelay <= 0 {
		return true
	}
	step := s.opts.ProcessingDelay / progressSteps
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for i := 1; i < progressSteps; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
		s.hub.broadcast(upload.Progress{File: name, Stage: upload.ProgressProcessing, Percent: float64(i * 100 / progressSteps)})
	}
	select {
	case <-ctx.Done():
		return false
	case <-ticker.C:
	}
	return true
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := upload.FileName(r.PathValue("name"))
	if name == "" {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(filepath.Join(s.opts.UploadDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj":
		w.Header().Set("Content-Type", "application/x-tgif")
	case ".mtl":
		w.Header().Set("Content-Type", "text/plain")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, f); err != nil {
		s.log.Debug("download interrupted", zap.String("file", name), zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.add(conn)
	s.log.Debug("progress client connected", zap.Int("clients", s.hub.len()))

	defer func() {
		s.hub.remove(conn)
		conn.Close()
	}()
	// Reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
