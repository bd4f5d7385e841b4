package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/milktracker/internal/buildinfo"
	"github.com/dmitrijs2005/milktracker/internal/client/cli"
	"github.com/dmitrijs2005/milktracker/internal/client/config"
	"github.com/dmitrijs2005/milktracker/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "cannot start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}
