// Package config handles viewer, upload and server configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/eshwanthkartitr/sih-draft/internal/assets"
)

// Config holds all settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Assets  AssetsConfig  `yaml:"assets"`
	Upload  UploadConfig  `yaml:"upload"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds rendering and camera control settings.
type ViewerConfig struct {
	FPS               int     `yaml:"fps"`
	FOVDegrees        float64 `yaml:"fov_degrees"`
	Near              float64 `yaml:"near"`
	Far               float64 `yaml:"far"`
	CameraDistance    float64 `yaml:"camera_distance"`
	MinDistance       float64 `yaml:"min_distance"`
	MaxDistance       float64 `yaml:"max_distance"`
	RotateSensitivity float64 `yaml:"rotate_sensitivity"` // radians per cell dragged
	ZoomSensitivity   float64 `yaml:"zoom_sensitivity"`   // units per wheel notch
	Background        string  `yaml:"background"`         // "R,G,B"
	CullBackfaces     bool    `yaml:"cull_backfaces"`
}

// AssetsConfig names the model shown on the home view.
type AssetsConfig struct {
	MaterialsURL string `yaml:"materials_url"`
	GeometryURL  string `yaml:"geometry_url"`
}

// UploadConfig holds the image-to-model backend settings.
type UploadConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	ProgressURL string        `yaml:"progress_url"` // empty derives ws://<endpoint>/ws
	Timeout     time.Duration `yaml:"timeout"`
	DownloadDir string        `yaml:"download_dir"`
}

// ServerConfig holds the placeholder backend settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	UploadDir       string        `yaml:"upload_dir"`
	ProcessingDelay time.Duration `yaml:"processing_delay"`
	MaxUploadMB     int64         `yaml:"max_upload_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:               30,
			FOVDegrees:        75,
			Near:              0.1,
			Far:               1000,
			CameraDistance:    5,
			MinDistance:       1,
			MaxDistance:       20,
			RotateSensitivity: 0.03,
			ZoomSensitivity:   0.5,
			Background:        "18,18,24",
		},
		Assets: AssetsConfig{
			MaterialsURL: assets.HouseMTL,
			GeometryURL:  assets.HouseOBJ,
		},
		Upload: UploadConfig{
			Endpoint:    "http://localhost:8000",
			Timeout:     2 * time.Minute,
			DownloadDir: ".",
		},
		Server: ServerConfig{
			Addr:            ":8000",
			UploadDir:       "uploads",
			ProcessingDelay: 13 * time.Second,
			MaxUploadMB:     32,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that would leave the viewer unusable.
func (c *Config) Validate() error {
	var errs []error
	v := c.Viewer
	if v.FPS <= 0 {
		errs = append(errs, fmt.Errorf("viewer.fps must be positive, got %d", v.FPS))
	}
	if v.FOVDegrees <= 0 || v.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("viewer.fov_degrees must be in (0, 180), got %v", v.FOVDegrees))
	}
	if v.Near <= 0 || v.Far <= v.Near {
		errs = append(errs, fmt.Errorf("viewer clip planes invalid: near=%v far=%v", v.Near, v.Far))
	}
	if v.MinDistance <= 0 || v.MaxDistance < v.MinDistance {
		errs = append(errs, fmt.Errorf("viewer zoom bounds invalid: min=%v max=%v", v.MinDistance, v.MaxDistance))
	} else if v.CameraDistance < v.MinDistance || v.CameraDistance > v.MaxDistance {
		errs = append(errs, fmt.Errorf("viewer.camera_distance %v outside [%v, %v]", v.CameraDistance, v.MinDistance, v.MaxDistance))
	}
	if _, _, _, err := v.BackgroundRGB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BackgroundRGB parses the "R,G,B" background color.
func (v ViewerConfig) BackgroundRGB() (r, g, b uint8, err error) {
	if _, err := fmt.Sscanf(v.Background, "%d,%d,%d", &r, &g, &b); err != nil {
		return 0, 0, 0, fmt.Errorf("viewer.background %q: want R,G,B: %w", v.Background, err)
	}
	return r, g, b, nil
}
