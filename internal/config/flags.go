package config

import "github.com/spf13/pflag"

// Flags are command-line overrides. Zero values leave the file or default
// setting untouched.
type Flags struct {
	ConfigPath string
	Debug      bool
	FPS        int
	Endpoint   string
	LogFile    string
	Addr       string
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.IntVar(&f.FPS, "fps", 0, "target frames per second")
	fs.StringVar(&f.Endpoint, "endpoint", "", "image-to-model backend base URL")
	fs.StringVar(&f.LogFile, "log-file", "", "write logs to this file")
	fs.StringVar(&f.Addr, "addr", "", "listen address for serve")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.FPS > 0 {
		cfg.Viewer.FPS = f.FPS
	}
	if f.Endpoint != "" {
		cfg.Upload.Endpoint = f.Endpoint
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
}
