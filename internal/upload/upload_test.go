package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/eshwanthkartitr/sih-draft/internal/download"
	"github.com/eshwanthkartitr/sih-draft/internal/loader"
)

const (
	placeholderOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3"
	placeholderMTL = "newmtl material0\nKa 1 1 1\nKd 1 1 1\nKs 0 0 0"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// backend imitates the processing service.
type backend struct {
	status   int
	requests atomic.Int32
	field    atomic.Value // last multipart field name seen
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process-image", func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		if b.status != 0 {
			http.Error(w, http.StatusText(b.status), b.status)
			return
		}
		if _, _, err := r.FormFile("image"); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		b.field.Store("image")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"objFileUrl": "/download/x.obj",
			"mtlFileUrl": "/download/x.mtl",
		})
	})
	mux.HandleFunc("GET /download/x.obj", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, placeholderOBJ)
	})
	mux.HandleFunc("GET /download/x.mtl", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, placeholderMTL)
	})
	return mux
}

func newSession(t *testing.T, b *backend) (*Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	log := zaptest.NewLogger(t)
	client, err := NewClient(srv.URL, 5*time.Second, log)
	if err != nil {
		t.Fatal(err)
	}
	return NewSession(client, SessionOptions{}, log), srv
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		invalid bool
	}{
		{"png", pngBytes(t), "png", false},
		{"empty", nil, "", true},
		{"text", []byte("hello, world"), "", true},
		{"pdf", []byte("%PDF-1.4\n"), "", true},
		{"truncated png", pngBytes(t)[:12], "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateImage(tc.data)
			if tc.invalid {
				if !errors.Is(err, ErrInvalidFileType) {
					t.Errorf("err = %v, want ErrInvalidFileType", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ValidateImage = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	b := &backend{}
	s, _ := newSession(t, b)

	err := s.Upload(context.Background(), "notes.txt", []byte("not an image"))
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("err = %v, want ErrInvalidFileType", err)
	}
	if n := b.requests.Load(); n != 0 {
		t.Errorf("%d requests sent for an invalid file", n)
	}
	if got := s.State().Phase; got != loader.Idle {
		t.Errorf("state = %s, want idle", got)
	}
}

func TestUploadServerError(t *testing.T) {
	b := &backend{status: http.StatusInternalServerError}
	s, _ := newSession(t, b)

	err := s.Upload(context.Background(), "photo.png", pngBytes(t))
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != 500 {
		t.Fatalf("err = %v, want StatusError 500", err)
	}

	st := s.State()
	if st.Phase != loader.Failed {
		t.Fatalf("state = %s, want failed", st.Phase)
	}
	if !strings.Contains(st.Err.Error(), "500") {
		t.Errorf("error %q does not mention 500", st.Err)
	}
	if _, ok := s.Result(); ok {
		t.Error("download urls available after failure")
	}
	if _, err := s.Download(context.Background(), t.TempDir()); !errors.Is(err, download.ErrMissingResource) {
		t.Errorf("Download = %v, want ErrMissingResource", err)
	}
}

func TestUploadLoadsModel(t *testing.T) {
	b := &backend{}
	s, srv := newSession(t, b)

	var mu sync.Mutex
	var progress []float64
	s.OnState(func(st loader.State, _ Stage) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, st.Progress)
	})

	if _, err := s.Download(context.Background(), t.TempDir()); !errors.Is(err, download.ErrMissingResource) {
		t.Errorf("Download before upload = %v, want ErrMissingResource", err)
	}

	if err := s.Upload(context.Background(), "photo.png", pngBytes(t)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if b.field.Load() != "image" {
		t.Error("backend did not receive the image field")
	}

	st := s.State()
	if st.Phase != loader.Ready || st.Model == nil {
		t.Fatalf("state = %+v, want ready with model", st)
	}
	// The placeholder OBJ has no usemtl, so its face keeps the default material.
	mesh := st.Model.Mesh
	if mesh.TriangleCount() != 1 || mesh.MaterialCount() != 0 {
		t.Errorf("unexpected model: %d triangles, %d materials", mesh.TriangleCount(), mesh.MaterialCount())
	} else if mat := mesh.Faces[0].Material; mat != -1 {
		t.Errorf("face material = %d, want -1", mat)
	}
	res, ok := s.Result()
	if !ok || res.OBJURL != srv.URL+"/download/x.obj" || res.MTLURL != srv.URL+"/download/x.mtl" {
		t.Errorf("result = %+v, %v", res, ok)
	}
	if s.Stage() != StageDone {
		t.Errorf("stage = %s, want done", s.Stage())
	}

	mu.Lock()
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress went backwards: %v", progress)
			break
		}
	}
	mu.Unlock()

	dir := t.TempDir()
	files, err := s.Download(context.Background(), dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	got, err := os.ReadFile(files.OBJ)
	if err != nil || string(got) != placeholderOBJ {
		t.Errorf("model.obj = %q, %v", got, err)
	}
}

func TestClientRejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"ftp://host", "::bad", ""} {
		if _, err := NewClient(endpoint, time.Second, nil); err == nil {
			t.Errorf("NewClient(%q) succeeded", endpoint)
		}
	}
}

func TestSubmitMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"objFileUrl": ""}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Submit(context.Background(), "a.png", pngBytes(t))
	if !errors.Is(err, loader.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestWatchProgress(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, p := range []Progress{
			{File: "photo.png", Stage: ProgressProcessing, Percent: 10},
			{File: "other.png", Stage: ProgressProcessing, Percent: 90},
			{File: "photo.png", Stage: ProgressProcessing, Percent: 60},
			{File: "other.png", Stage: ProgressDone, Percent: 100},
			{File: "photo.png", Stage: ProgressDone, Percent: 100},
			{File: "photo.png", Stage: ProgressProcessing, Percent: 5},
		} {
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
		conn.ReadMessage()
	}))
	defer srv.Close()

	var got []float64
	err := WatchProgress(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), "photo.png", func(p Progress) {
		got = append(got, p.Percent)
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("WatchProgress: %v", err)
	}
	if want := []float64{10, 60, 100}; !slices.Equal(got, want) {
		t.Errorf("progress = %v, want %v", got, want)
	}
}

func TestWatchProgressCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	err := WatchProgress(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), "", func(Progress) {}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestUploadConcurrentBusy(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		<-release
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	defer unblock()

	log := zaptest.NewLogger(t)
	client, err := NewClient(srv.URL, 5*time.Second, log)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(client, SessionOptions{}, log)

	const n = 8
	data := pngBytes(t)
	start := make(chan struct{})
	errs := make(chan error, n)
	for range n {
		go func() {
			<-start
			errs <- s.Upload(context.Background(), "photo.png", data)
		}()
	}
	close(start)

	for range n - 1 {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrBusy) {
				t.Errorf("concurrent Upload = %v, want ErrBusy", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("uploads did not return ErrBusy")
		}
	}
	unblock()

	var serr *StatusError
	if err := <-errs; !errors.As(err, &serr) || serr.Code != http.StatusServiceUnavailable {
		t.Errorf("admitted Upload = %v, want StatusError 503", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("backend saw %d requests, want 1", got)
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"photo.png":         "photo.png",
		"../../etc/passwd":  "passwd",
		`C:\Users\me\a.jpg`: "a.jpg",
		"":                  "",
		"..":                "",
		"dir/":              "dir",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
