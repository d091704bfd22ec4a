package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/eshwanthkartitr/sih-draft/internal/assets"
)

// Fetcher opens a resource by reference. size is -1 when unknown.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (rc io.ReadCloser, size int64, err error)
}

// DefaultFetcher reads http(s) URLs, file:// URLs, builtin: references to
// the embedded default model and plain paths.
type DefaultFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f DefaultFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.fetchHTTP(ctx, ref)
		case "file":
			return openFile(u.Path)
		case assets.Scheme:
			return assets.Open(ref)
		}
	}
	return openFile(ref)
}

func (f DefaultFetcher) fetchHTTP(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, &StatusError{URL: ref, Code: resp.StatusCode}
	}
	return resp.Body, resp.ContentLength, nil
}

func openFile(p string) (io.ReadCloser, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Resolve interprets ref relative to the resource base was loaded from.
func Resolve(base, ref string) string {
	if r, err := url.Parse(ref); err == nil && r.Scheme != "" {
		return ref
	}
	if name, ok := assets.Name(base); ok {
		return assets.Scheme + ":" + path.Join(path.Dir(name), filepath.ToSlash(ref))
	}
	if b, err := url.Parse(base); err == nil && b.Scheme != "" && len(b.Scheme) > 1 {
		if b.Scheme == "file" {
			return "file://" + path.Join(path.Dir(b.Path), filepath.ToSlash(ref))
		}
		r, err := url.Parse(filepath.ToSlash(ref))
		if err == nil {
			return b.ResolveReference(r).String()
		}
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(base), ref)
}

// isGLTF reports whether ref names a glTF container.
func isGLTF(ref string) bool {
	if name, ok := assets.Name(ref); ok {
		ref = name
	} else if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		ref = u.Path
	}
	ext := strings.ToLower(path.Ext(ref))
	return ext == ".glb" || ext == ".gltf"
}

// progressReader counts bytes read and reports whole-percent increases.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   float64
	report func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := float64(p.read) / float64(p.total) * 100
		pct = min(pct, 100)
		// Whole-percent steps keep subscriber traffic bounded.
		if pct >= p.last+1 || (pct == 100 && p.last < 100) {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
