package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"imgcompress/internal/app"
	"imgcompress/internal/config"
	"imgcompress/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		return 1
	}

	log, err := logger.NewSugared(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		return 1
	}
	defer log.Sync()

	log = log.With(zap.String("run_id", uuid.New().String()))

	a := app.New(cfg, os.Stdout, log.Desugar())

	if !cfg.App.Watch {
		if err := a.Run(); err != nil {
			log.Errorf("Conversion aborted: %v", err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Watch(ctx); err != nil {
		log.Errorf("Conversion aborted: %v", err)
		return 1
	}

	log.Info("Watcher stopped")
	return 0
}
