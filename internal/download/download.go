// Package download saves a finished model as model.obj and model.mtl.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/pkg/models"
)

// ErrMissingResource is returned when a download is requested before a
// model is available.
var ErrMissingResource = errors.New("model not available for download")

const (
	OBJName = "model.obj"
	MTLName = "model.mtl"
	GLBName = "model.glb"
)

// Files are the paths written by a download.
type Files struct {
	OBJ string
	MTL string
}

// FromURLs copies the geometry and material resources into dir.
func FromURLs(ctx context.Context, fetcher loader.Fetcher, objURL, mtlURL, dir string) (Files, error) {
	if objURL == "" || mtlURL == "" {
		return Files{}, ErrMissingResource
	}
	if fetcher == nil {
		fetcher = loader.DefaultFetcher{}
	}

	files := Files{OBJ: filepath.Join(dir, OBJName), MTL: filepath.Join(dir, MTLName)}
	for _, f := range []struct{ url, dst string }{
		{objURL, files.OBJ},
		{mtlURL, files.MTL},
	} {
		if err := copyResource(ctx, fetcher, f.url, f.dst); err != nil {
			return Files{}, err
		}
	}
	return files, nil
}

func copyResource(ctx context.Context, fetcher loader.Fetcher, ref, dst string) error {
	rc, _, err := fetcher.Fetch(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: download %s: %w", loader.ErrTransport, ref, err)
	}
	defer rc.Close()

	return writeFile(dst, func(w io.Writer) error {
		if _, err := io.Copy(w, rc); err != nil {
			return fmt.Errorf("%w: download %s: %w", loader.ErrTransport, ref, err)
		}
		return nil
	})
}

// FromModel writes the in-memory mesh and its materials into dir.
func FromModel(m *models.Model, dir string) (Files, error) {
	if m == nil || m.Mesh == nil {
		return Files{}, ErrMissingResource
	}

	files := Files{OBJ: filepath.Join(dir, OBJName), MTL: filepath.Join(dir, MTLName)}
	if err := writeFile(files.OBJ, func(w io.Writer) error {
		return models.WriteOBJ(w, m.Mesh, MTLName)
	}); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.MTL, func(w io.Writer) error {
		return models.WriteMTL(w, m.Mesh.MaterialLib())
	}); err != nil {
		return Files{}, err
	}
	return files, nil
}

// SaveGLB exports the mesh as binary glTF to dir/model.glb.
func SaveGLB(m *models.Model, dir string) (string, error) {
	if m == nil || m.Mesh == nil {
		return "", ErrMissingResource
	}
	dst := filepath.Join(dir, GLBName)
	err := writeFile(dst, func(w io.Writer) error {
		return models.EncodeGLB(w, m.Mesh)
	})
	return dst, err
}

// writeFile writes through a temp file so a failed download never leaves a
// truncated file at dst.
func writeFile(dst string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
