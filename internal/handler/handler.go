package handler

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"imgcompress/internal/domain"
)

// Handler prints one status line per conversion result and logs it.
type Handler struct {
	out io.Writer
	log *zap.Logger
}

func NewHandler(out io.Writer, log *zap.Logger) *Handler {
	return &Handler{
		out: out,
		log: log,
	}
}

func (h *Handler) Handle(res domain.Result) {
	name := res.Job.Name()

	if !res.OK() {
		fmt.Fprintf(h.out, "❌ Error processing %s: %v\n", name, res.Err)
		h.log.Error("Failed to compress image",
			zap.String("file", name),
			zap.Error(res.Err))
		return
	}

	fmt.Fprintf(h.out, "✅ Compressed: %s → %s\n", name, res.Job.OutputPath)
	h.log.Info("Image processed",
		zap.String("input", res.Job.InputPath),
		zap.String("output", res.Job.OutputPath),
		zap.Int("quality", res.Job.Quality))
}
