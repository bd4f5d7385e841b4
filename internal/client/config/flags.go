package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/milktracker/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-s string   local store path
//	-t int      request timeout in seconds
//	-w int      viewport width override in columns (0 = probe terminal)
//	-u string   user agent
//	-e string   export download directory
//	-v          verbose logging
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-w", "-u", "-e", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "local store path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.Width, "w", cfg.Width, "viewport width override")
	fs.StringVar(&cfg.UserAgent, "u", cfg.UserAgent, "user agent")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "export download directory")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
