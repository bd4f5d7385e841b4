package config

import (
	"time"

	"github.com/dmitrijs2005/milktracker/internal/configfile"
	"github.com/dmitrijs2005/milktracker/internal/flagx"
	"github.com/dmitrijs2005/milktracker/internal/timex"
)

// FileConfig is a DTO used only for decoding the config file. The request
// timeout may be "10s" or integer nanoseconds.
type FileConfig struct {
	ServerURL      string         `json:"server_url" yaml:"server_url"`
	StorePath      string         `json:"store_path" yaml:"store_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	Width          int            `json:"width" yaml:"width"`
	UserAgent      string         `json:"user_agent" yaml:"user_agent"`
	ExportDir      string         `json:"export_dir" yaml:"export_dir"`
	Verbose        bool           `json:"verbose" yaml:"verbose"`
}

// parseFile overlays Config with values from the file named by -c/-config.
// Panics on read or decode errors.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	var fc FileConfig
	if err := configfile.Load(path, &fc); err != nil {
		panic(err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.StorePath != "" {
		cfg.StorePath = fc.StorePath
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = time.Duration(fc.RequestTimeout.Duration)
	}
	if fc.Width > 0 {
		cfg.Width = fc.Width
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.ExportDir != "" {
		cfg.ExportDir = fc.ExportDir
	}
	cfg.Verbose = cfg.Verbose || fc.Verbose
}
