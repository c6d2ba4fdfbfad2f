package app

import (
	"context"
	"io"

	"go.uber.org/zap"

	"imgcompress/internal/config"
	"imgcompress/internal/handler"
	"imgcompress/internal/repository"
	"imgcompress/internal/service"
	"imgcompress/internal/watcher"
	"imgcompress/pkg/utils"
)

type App struct {
	cfg     *config.Config
	log     *zap.Logger
	service service.ImageService
	handler *handler.Handler
}

// New wires the converter. Status lines are written to out.
func New(cfg *config.Config, out io.Writer, log *zap.Logger) *App {
	repo := repository.NewFileRepository(log)
	proc := utils.NewImageProcessor(log, cfg.App.Lossless)
	h := handler.NewHandler(out, log)

	return &App{
		cfg:     cfg,
		log:     log,
		service: service.NewImageService(repo, proc, h, log),
		handler: h,
	}
}

// Run converts the input directory once. The returned error is always fatal.
func (a *App) Run() error {
	return a.service.Convert(a.cfg.App.InputDir, a.cfg.App.OutputDir, a.cfg.App.Quality)
}

// Watch registers the input directory with the watcher, converts it once,
// then keeps converting new and changed files until ctx is done. Files
// added while the first pass runs are queued by the watcher.
func (a *App) Watch(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.cfg.App.InputDir,
		a.cfg.App.OutputDir,
		a.cfg.App.Quality,
		a.service,
		a.handler,
		a.log,
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := a.Run(); err != nil {
		return err
	}

	return w.Run(ctx)
}
