package utils

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

type ImageProcessor struct {
	log      *zap.Logger
	lossless bool
}

func NewImageProcessor(log *zap.Logger, lossless bool) *ImageProcessor {
	return &ImageProcessor{log: log, lossless: lossless}
}

// Decode reads and decodes the image at path. The format is picked from
// the file content, not its extension.
func (p *ImageProcessor) Decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		if mtype, derr := mimetype.DetectFile(path); derr == nil {
			return nil, fmt.Errorf("decode (content looks like %s): %w", mtype.String(), err)
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	p.log.Debug("Image decoded",
		zap.String("input", path),
		zap.String("mode", ColorMode(img)),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return img, nil
}

// Normalize drops the alpha channel and resolves palettes so the result is
// opaque full color. Alpha is discarded, not composited: pixels keep their
// stored color. Images in any other mode are returned unchanged.
func (p *ImageProcessor) Normalize(img image.Image) image.Image {
	if !HasAlphaOrPalette(img) {
		return img
	}

	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}

	p.log.Debug("Color mode normalized",
		zap.String("from", ColorMode(img)),
		zap.String("to", ColorMode(dst)))

	return dst
}

// EncodeWebP writes img to w as WebP. quality is handed to the encoder as is.
func (p *ImageProcessor) EncodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{
		Lossless: p.lossless,
		Quality:  float32(quality),
	})
}

// HasAlphaOrPalette reports whether img is stored with an alpha channel or
// as indexed color.
func HasAlphaOrPalette(img image.Image) bool {
	switch img.(type) {
	case *image.Paletted, *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.NYCbCrA:
		return true
	}
	return false
}

// ColorMode names the pixel representation of img for logs.
func ColorMode(img image.Image) string {
	switch img.(type) {
	case *image.Paletted:
		return "paletted"
	case *image.NRGBA, *image.RGBA:
		return "rgba"
	case *image.NRGBA64, *image.RGBA64:
		return "rgba64"
	case *image.NYCbCrA:
		return "ycbcra"
	case *image.YCbCr:
		return "ycbcr"
	case *image.Gray, *image.Gray16:
		return "gray"
	case *image.CMYK:
		return "cmyk"
	}
	return fmt.Sprintf("%T", img)
}
