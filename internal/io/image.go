package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService prepares cover art for embedding in audio tags.
//
//	svc := NewImageService(90)
//	cover, err := svc.PrepareCover(ctx, downloaded, 1000)
type ImageService struct {
	quality int
}

// NewImageService creates an ImageService encoding JPEG at the given
// quality (1-100, default 90).
func NewImageService(quality int) *ImageService {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &ImageService{quality: quality}
}

// PrepareCover decodes data (JPEG or PNG), scales it down to fit within
// maxSize x maxSize preserving aspect ratio, and re-encodes it as JPEG.
// A maxSize of zero or less keeps the original dimensions.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxSize)
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit scales width and height down so that neither exceeds max.
func fit(width, height, max int) (int, int) {
	if max <= 0 || (width <= max && height <= max) {
		return width, height
	}
	if width >= height {
		return max, max * height / width
	}
	return max * width / height, max
}
