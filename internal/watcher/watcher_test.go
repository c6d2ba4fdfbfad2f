package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"imgcompress/internal/domain"
)

type fakeConverter struct {
	mu   sync.Mutex
	jobs []domain.ConversionJob
	seen chan domain.ConversionJob
}

func (c *fakeConverter) ConvertFile(job domain.ConversionJob) domain.Result {
	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()
	c.seen <- job
	return domain.Result{Job: job}
}

type countingHandler struct {
	mu    sync.Mutex
	count int
}

func (h *countingHandler) Handle(domain.Result) {
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
}

func startWatcher(t *testing.T, in, out string) (*fakeConverter, *countingHandler, func()) {
	t.Helper()
	conv := &fakeConverter{seen: make(chan domain.ConversionJob, 10)}
	h := &countingHandler{}

	w, err := NewWatcher(in, out, 70, conv, h, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	return conv, h, func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v", err)
		}
		w.Close()
	}
}

func TestWatcherConvertsNewImages(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	conv, h, stop := startWatcher(t, in, out)
	defer stop()

	testFile := filepath.Join(in, "new.png")
	if err := os.WriteFile(testFile, []byte("data"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	select {
	case job := <-conv.seen:
		if job.InputPath != testFile {
			t.Errorf("Expected input %s, got %s", testFile, job.InputPath)
		}
		if want := filepath.Join(out, "new.webp"); job.OutputPath != want {
			t.Errorf("Expected output %s, got %s", want, job.OutputPath)
		}
		if job.Quality != 70 {
			t.Errorf("Expected quality 70, got %d", job.Quality)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for conversion")
	}

	// Wait for the handler to see the result before checking the count.
	deadline := time.Now().Add(time.Second)
	for {
		h.mu.Lock()
		n := h.count
		h.mu.Unlock()
		if n == 1 || time.Now().After(deadline) {
			if n != 1 {
				t.Errorf("Expected 1 handled result, got %d", n)
			}
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	in := t.TempDir()
	conv, _, stop := startWatcher(t, in, t.TempDir())
	defer stop()

	testFile := filepath.Join(in, "busy.jpg")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(testFile, []byte{byte(i)}, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-conv.seen:
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for conversion")
	}

	select {
	case job := <-conv.seen:
		t.Errorf("Expected a single conversion, got another for %s", job.InputPath)
	case <-time.After(2 * debounceDelay):
	}
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	in := t.TempDir()
	conv, _, stop := startWatcher(t, in, t.TempDir())
	defer stop()

	for _, name := range []string{"notes.txt", "anim.gif", "done.webp", ".hidden.png"} {
		if err := os.WriteFile(filepath.Join(in, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(in, "dir.png"), 0755); err != nil {
		t.Fatal(err)
	}

	select {
	case job := <-conv.seen:
		t.Errorf("Unexpected conversion of %s", job.InputPath)
	case <-time.After(3 * debounceDelay):
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), t.TempDir(), 80, &fakeConverter{}, &countingHandler{}, zap.NewNop())
	if err == nil {
		t.Fatal("Expected error for missing input directory")
	}
}

func TestWatcherQueuesEventsBeforeRun(t *testing.T) {
	in := t.TempDir()
	conv := &fakeConverter{seen: make(chan domain.ConversionJob, 10)}

	w, err := NewWatcher(in, t.TempDir(), 80, conv, &countingHandler{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.Close()

	// Written while the first pass would still be running.
	testFile := filepath.Join(in, "during.png")
	if err := os.WriteFile(testFile, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case job := <-conv.seen:
		if job.InputPath != testFile {
			t.Errorf("Expected input %s, got %s", testFile, job.InputPath)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for conversion")
	}
}
