package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"imgcompress/internal/domain"
)

const debounceDelay = 500 * time.Millisecond

// Converter converts a single job.
type Converter interface {
	ConvertFile(job domain.ConversionJob) domain.Result
}

// ResultHandler receives the outcome of every conversion triggered by the watcher.
type ResultHandler interface {
	Handle(res domain.Result)
}

// Watcher converts images as they appear or change in the input directory.
// Conversions run one at a time on the goroutine that called Run.
type Watcher struct {
	inputDir  string
	outputDir string
	quality   int

	converter Converter
	handler   ResultHandler
	log       *zap.Logger

	watcher *fsnotify.Watcher
	ready   chan pending
	done    chan struct{}
}

func NewWatcher(inputDir, outputDir string, quality int, converter Converter, handler ResultHandler, log *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsWatcher.Add(inputDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", inputDir, err)
	}

	return &Watcher{
		inputDir:  inputDir,
		outputDir: outputDir,
		quality:   quality,
		converter: converter,
		handler:   handler,
		log:       log,
		watcher:   fsWatcher,
		ready:     make(chan pending),
		done:      make(chan struct{}),
	}, nil
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.done)

	// Debounce: editors and copy tools emit several events per file.
	debounce := newDebouncer(debounceDelay)
	defer debounce.stop()

	w.log.Info("Watching folder", zap.String("input_dir", w.inputDir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}

			debounce.schedule(filepath.Base(event.Name), func(p pending) {
				select {
				case w.ready <- p:
				case <-w.done:
				}
			})

		case p := <-w.ready:
			if debounce.take(p) {
				w.convert(p.name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	name := filepath.Base(event.Name)
	// Skip temp files, including our own pending outputs.
	if strings.HasPrefix(name, ".") {
		return false
	}
	return domain.IsSupported(name)
}

func (w *Watcher) convert(name string) {
	info, err := os.Stat(filepath.Join(w.inputDir, name))
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	job := domain.NewConversionJob(w.inputDir, name, w.outputDir, w.quality)
	w.handler.Handle(w.converter.ConvertFile(job))
}

// Close stops watching. It must not be called while Run is still running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
