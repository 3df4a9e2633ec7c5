package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ArtworkSize names one of the sizes the artwork CDN serves. Artwork
// URLs returned by the API point at the "large" (100x100) variant.
type ArtworkSize string

const (
	ArtworkLarge    ArtworkSize = "large"
	ArtworkT500     ArtworkSize = "t500x500"
	ArtworkOriginal ArtworkSize = "original"
)

// ArtworkURL rewrites a CDN artwork URL to request size instead of the
// size it currently names.
//
//	ArtworkURL("https://i1.sndcdn.com/artworks-abc-large.jpg", ArtworkT500)
//	// "https://i1.sndcdn.com/artworks-abc-t500x500.jpg"
func ArtworkURL(rawURL string, size ArtworkSize) string {
	for _, from := range []ArtworkSize{ArtworkLarge, ArtworkT500, ArtworkOriginal} {
		marker := "-" + string(from) + "."
		if i := strings.LastIndex(rawURL, marker); i >= 0 {
			return rawURL[:i] + "-" + string(size) + "." + rawURL[i+len(marker):]
		}
	}
	return rawURL
}

// ImageService resizes and re-encodes cover art.
//
//	svc := NewImageService(90)
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
type ImageService struct {
	quality int
}

// NewImageService creates an ImageService encoding JPEG at quality
// (1-100). Out of range values select 90.
func NewImageService(quality int) *ImageService {
	if quality < 1 || quality > 100 {
		quality = 90
	}
	return &ImageService{quality: quality}
}

// ResizeImage scales an image to fit within maxWidth x maxHeight,
// keeping its aspect ratio, and returns it as JPEG. Smaller images are
// only re-encoded.
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		return s.encode(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return s.encode(dst)
}

// ConvertToJPEG re-encodes any decodable image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return s.encode(img)
}

// Prepare applies the resize and conversion options in one step. data
// is returned untouched when neither applies.
func (s *ImageService) Prepare(ctx context.Context, data []byte, resize bool, maxSize int, toJPEG bool) ([]byte, error) {
	switch {
	case resize && maxSize > 0:
		return s.ResizeImage(ctx, data, maxSize, maxSize)
	case toJPEG:
		return s.ConvertToJPEG(ctx, data)
	default:
		return data, nil
	}
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit returns the largest size within maxW x maxH with the aspect ratio
// of w x h, or w x h itself if it already fits.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := float64(w) / float64(h)
	if float64(maxW)/float64(maxH) > ratio {
		return max(1, int(float64(maxH)*ratio)), maxH
	}
	return maxW, max(1, int(float64(maxW)/ratio))
}
