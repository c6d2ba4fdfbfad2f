package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"imgcompress/internal/domain"
)

type FileRepository interface {
	EnsureDir(dir string) error
	ListCandidates(dir string) ([]string, error)
	Create(path string) (OutputFile, error)
}

// OutputFile is a pending output. Nothing appears at the target path
// until Commit succeeds.
type OutputFile interface {
	io.Writer
	Commit() error
	Abort() error
}

type fsRepository struct {
	log *zap.Logger
}

func NewFileRepository(log *zap.Logger) FileRepository {
	return &fsRepository{log: log}
}

func (r *fsRepository) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ListCandidates returns the names of the direct regular-file children of
// dir that carry a supported extension, in directory order. Subdirectories
// are not descended into.
func (r *fsRepository) ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsSupported(entry.Name()) {
			continue
		}

		if !entry.Type().IsRegular() {
			// symlinks count when they point at a regular file
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}

		names = append(names, entry.Name())
	}

	return names, nil
}

func (r *fsRepository) Create(path string) (OutputFile, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &outputFile{File: tmp, target: path, log: r.log}, nil
}

type outputFile struct {
	*os.File
	target string
	log    *zap.Logger
}

func (f *outputFile) Commit() error {
	if err := f.File.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), f.target); err != nil {
		os.Remove(f.Name())
		return err
	}

	f.log.Debug("Output written", zap.String("path", f.target))
	return nil
}

func (f *outputFile) Abort() error {
	f.File.Close()
	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		f.log.Warn("Failed to remove partial output",
			zap.String("path", f.Name()),
			zap.Error(err))
		return err
	}
	return nil
}
