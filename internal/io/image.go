package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// jpegQuality is used for every re-encoded cover.
const jpegQuality = 90

// ImageService prepares cover images before they are saved next to an item.
//
// Audiobookshelf serves covers in whatever format was uploaded (JPEG, PNG or
// WebP). ImageService normalizes them so the saved cover.jpg really is a JPEG:
//
//	svc := NewImageService()
//	data, err := svc.PrepareCover(ctx, raw, 1000)
//	if err == nil {
//	    os.WriteFile(layout.CoverPath, data, 0644)
//	}
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// PrepareCover returns data as a JPEG no larger than maxSize on either side.
//
// JPEG input that already fits is returned unchanged. A maxSize of zero or
// less disables resizing. Returns an error if data is not a decodable image.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	tooLarge := maxSize > 0 && (cfg.Width > maxSize || cfg.Height > maxSize)
	switch {
	case tooLarge:
		return s.ResizeImage(ctx, data, maxSize, maxSize)
	case format == "jpeg":
		return data, nil
	default:
		return s.ConvertToJPEG(ctx, data)
	}
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and the Catmull-Rom kernel is used for
// scaling. The result is always JPEG-encoded.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToJPEG re-encodes an image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin scales width x height down to fit maxWidth x maxHeight,
// keeping the aspect ratio. Dimensions that already fit are returned as is.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}
