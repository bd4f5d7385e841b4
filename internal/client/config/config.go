// Package config holds runtime settings for the milk tracker CLI.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the REST backend.
//   - StorePath: SQLite file that keeps the credential token between runs.
//   - RequestTimeout: deadline applied to every backend request.
//   - Width: viewport width override in columns; 0 probes the terminal.
//   - UserAgent: sent with every request and used for device classification.
//   - ExportDir: directory that receives downloaded CSV exports.
//   - Verbose: log at debug level instead of warn.
type Config struct {
	ServerURL      string
	StorePath      string
	RequestTimeout time.Duration
	Width          int
	UserAgent      string
	ExportDir      string
	Verbose        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.StorePath = "milktracker-data/client.db"
	c.RequestTimeout = 10 * time.Second
	c.Width = 0
	c.UserAgent = "milktracker-cli/1.0"
	c.ExportDir = "milktracker-data/exports"
	c.Verbose = false
}

// LogLevel is the level name handed to the logger.
func (c *Config) LogLevel() string {
	if c.Verbose {
		return "debug"
	}
	return "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
