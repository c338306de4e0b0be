// Command walkie-talkie runs the voice/text gateway: it loads config.yaml
// (or the path named by -config/WT_CONFIG), then serves the WebSocket and
// health endpoints until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/madenney/walkie-talkie/internal/config"
	"github.com/madenney/walkie-talkie/internal/gateway"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to WT_CONFIG env var, then ./config.yaml)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("walkie-talkie exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	srv, err := gateway.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.ListenAndServe(ctx)
}
