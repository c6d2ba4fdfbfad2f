package service

import (
	"fmt"

	"go.uber.org/zap"

	"imgcompress/internal/domain"
	"imgcompress/internal/repository"
	"imgcompress/pkg/utils"
)

// ResultHandler receives the outcome of every attempted file.
type ResultHandler interface {
	Handle(res domain.Result)
}

type ImageService interface {
	Convert(inputDir, outputDir string, quality int) error
	ConvertFile(job domain.ConversionJob) domain.Result
}

type imageService struct {
	repo    repository.FileRepository
	proc    *utils.ImageProcessor
	handler ResultHandler
	log     *zap.Logger
}

func NewImageService(repo repository.FileRepository, proc *utils.ImageProcessor, handler ResultHandler, log *zap.Logger) ImageService {
	return &imageService{
		repo:    repo,
		proc:    proc,
		handler: handler,
		log:     log,
	}
}

// Convert re-encodes every supported image directly inside inputDir into
// outputDir, one file at a time. Per-file failures go to the handler and
// never stop the batch; only failing to create outputDir or to list
// inputDir is returned.
func (s *imageService) Convert(inputDir, outputDir string, quality int) error {
	s.log.Info("Starting conversion",
		zap.String("input_dir", inputDir),
		zap.String("output_dir", outputDir),
		zap.Int("quality", quality))

	if err := s.repo.EnsureDir(outputDir); err != nil {
		return err
	}

	names, err := s.repo.ListCandidates(inputDir)
	if err != nil {
		return err
	}

	for _, name := range names {
		job := domain.NewConversionJob(inputDir, name, outputDir, quality)
		s.handler.Handle(s.ConvertFile(job))
	}

	s.log.Info("Conversion finished", zap.String("input_dir", inputDir))

	return nil
}

// ConvertFile runs decode, normalize and encode for a single job. It never
// panics and never leaves a partial output behind.
func (s *imageService) ConvertFile(job domain.ConversionJob) (res domain.Result) {
	res.Job = job

	var out repository.OutputFile
	defer func() {
		if r := recover(); r != nil {
			if out != nil {
				out.Abort()
			}
			res.Err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	img, err := s.proc.Decode(job.InputPath)
	if err != nil {
		res.Err = err
		return res
	}

	img = s.proc.Normalize(img)

	out, err = s.repo.Create(job.OutputPath)
	if err != nil {
		res.Err = fmt.Errorf("create output: %w", err)
		return res
	}

	if err := s.proc.EncodeWebP(out, img, job.Quality); err != nil {
		out.Abort()
		res.Err = fmt.Errorf("encode: %w", err)
		return res
	}

	if err := out.Commit(); err != nil {
		res.Err = fmt.Errorf("write output: %w", err)
		return res
	}

	return res
}
