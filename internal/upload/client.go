// Package upload submits an image to the processing backend and loads the
// model it returns.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eshwanthkartitr/sih-draft/internal/loader"
	"github.com/eshwanthkartitr/sih-draft/internal/logger"
)

// ProcessPath is the backend route accepting uploads.
const ProcessPath = "/process-image"

// Result holds the absolute URLs of the generated model files.
type Result struct {
	OBJURL string `json:"objFileUrl"`
	MTLURL string `json:"mtlFileUrl"`
}

// StatusError is returned when the backend answers outside 2xx.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload failed: HTTP %d %s", e.Code, http.StatusText(e.Code))
}

// FileName strips directories from a client-supplied file name. The backend
// stores uploads and tags their progress under this name. It returns "" for
// names with no file part.
func FileName(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." || name == ".." {
		return ""
	}
	return name
}

// Client talks to the processing backend.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a client for the backend at endpoint.
func NewClient(endpoint string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  logger.OrNop(log).Named("upload"),
	}, nil
}

// Endpoint returns the backend base URL.
func (c *Client) Endpoint() *url.URL {
	u := *c.base
	return &u
}

// Submit posts the image as the multipart field "image" and returns the
// model URLs resolved against the endpoint.
func (c *Client) Submit(ctx context.Context, filename string, data []byte) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return Result{}, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Result{}, fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Result{}, fmt.Errorf("build form: %w", err)
	}

	target := c.base.ResolveReference(&url.URL{Path: ProcessPath}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &body)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.log.Info("uploading", zap.String("file", filename), zap.Int("bytes", len(data)), zap.String("url", target))
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: upload: %w", loader.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("%w: %w", loader.ErrTransport, &StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	var res Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("%w: decode upload response: %w", loader.ErrParse, err)
	}
	if res.OBJURL == "" || res.MTLURL == "" {
		return Result{}, fmt.Errorf("%w: upload response missing model urls", loader.ErrParse)
	}
	if res.OBJURL, err = c.resolve(res.OBJURL); err != nil {
		return Result{}, err
	}
	if res.MTLURL, err = c.resolve(res.MTLURL); err != nil {
		return Result{}, err
	}
	c.log.Info("upload processed", zap.String("obj", res.OBJURL), zap.String("mtl", res.MTLURL))
	return res, nil
}

// resolve interprets ref against the endpoint origin.
func (c *Client) resolve(ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: model url %q: %w", loader.ErrParse, ref, err)
	}
	return c.base.ResolveReference(r).String(), nil
}
