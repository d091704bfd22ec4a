package main

import (
	"testing"

	"github.com/eshwanthkartitr/sih-draft/internal/config"
	"github.com/eshwanthkartitr/sih-draft/pkg/render"
)

func TestProgressURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.UploadConfig
		want string
	}{
		{"derived", config.UploadConfig{Endpoint: "http://localhost:8000"}, "ws://localhost:8000/ws"},
		{"tls", config.UploadConfig{Endpoint: "https://example.com/api/"}, "wss://example.com/api/ws"},
		{"explicit", config.UploadConfig{Endpoint: "http://a", ProgressURL: "ws://b/progress"}, "ws://b/progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := progressURL(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("progressURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLifecycleOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.Background = "1,2,3"
	cfg.Viewer.MaxDistance = 12

	opts := lifecycleOptions(cfg, "a.mtl", "a.obj")
	if opts.MaterialsURL != "a.mtl" || opts.GeometryURL != "a.obj" {
		t.Errorf("urls = %q, %q", opts.MaterialsURL, opts.GeometryURL)
	}
	if opts.Viewport.Background != render.RGB(1, 2, 3) {
		t.Errorf("background = %v", opts.Viewport.Background)
	}
	if opts.Viewport.MaxDistance != 12 || opts.Viewport.Distance != 5 {
		t.Errorf("distances = %v, %v", opts.Viewport.MaxDistance, opts.Viewport.Distance)
	}
	if opts.Sensitivity != 0.03 || opts.ZoomSensitivity != 0.5 {
		t.Errorf("sensitivity = %v, %v", opts.Sensitivity, opts.ZoomSensitivity)
	}
}
