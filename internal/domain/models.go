package domain

import (
	"path/filepath"
	"strings"
)

// TargetExtension is the extension of every file the converter writes.
const TargetExtension = ".webp"

// SupportedExtensions lists the lower-cased input extensions that are converted.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff"}

// IsSupported reports whether name has one of SupportedExtensions, ignoring case.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ConversionJob describes the conversion of a single input file.
type ConversionJob struct {
	InputPath  string
	OutputPath string
	Quality    int
}

func NewConversionJob(inputDir, name, outputDir string, quality int) ConversionJob {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.TrimLeft(base, ".") == "" {
		// dot-files such as ".png" have no extension of their own
		base = name
	}
	return ConversionJob{
		InputPath:  filepath.Join(inputDir, name),
		OutputPath: filepath.Join(outputDir, base+TargetExtension),
		Quality:    quality,
	}
}

// Name returns the base name of the input file.
func (j ConversionJob) Name() string {
	return filepath.Base(j.InputPath)
}

// Result is the outcome of one ConversionJob. Err is nil on success.
type Result struct {
	Job ConversionJob
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil
}
