package main

import (
	"fmt"
	"net/url"
	"path"

	"github.com/eshwanthkartitr/sih-draft/internal/config"
	"github.com/eshwanthkartitr/sih-draft/internal/lifecycle"
	"github.com/eshwanthkartitr/sih-draft/internal/viewport"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

func viewportOptions(v config.ViewerConfig) viewport.Options {
	opts := viewport.DefaultOptions()
	opts.FOVDegrees = v.FOVDegrees
	opts.Near, opts.Far = v.Near, v.Far
	opts.Distance = v.CameraDistance
	opts.MinDistance, opts.MaxDistance = v.MinDistance, v.MaxDistance
	opts.CullBackfaces = v.CullBackfaces
	if r, g, b, err := v.BackgroundRGB(); err == nil {
		opts.Background = render.RGB(r, g, b)
	}
	return opts
}

func lifecycleOptions(cfg *config.Config, materials, geometry string) lifecycle.Options {
	return lifecycle.Options{
		MaterialsURL:    materials,
		GeometryURL:     geometry,
		FPS:             cfg.Viewer.FPS,
		Viewport:        viewportOptions(cfg.Viewer),
		Sensitivity:     cfg.Viewer.RotateSensitivity,
		ZoomSensitivity: cfg.Viewer.ZoomSensitivity,
	}
}

// progressURL returns the configured websocket URL, or ws(s)://<endpoint>/ws.
func progressURL(u config.UploadConfig) (string, error) {
	if u.ProgressURL != "" {
		return u.ProgressURL, nil
	}
	base, err := url.Parse(u.Endpoint)
	if err != nil {
		return "", fmt.Errorf("upload endpoint %q: %w", u.Endpoint, err)
	}
	switch base.Scheme {
	case "https":
		base.Scheme = "wss"
	default:
		base.Scheme = "ws"
	}
	base.Path = path.Join("/", base.Path, "ws")
	return base.String(), nil
}
