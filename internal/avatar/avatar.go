// Package avatar validates uploaded profile pictures and normalizes them to a
// fixed-size square PNG.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"golang.org/x/image/draw"
)

// ContentType is the media type of every processed avatar.
const ContentType = "image/png"

// Defaults used when the configuration leaves a value unset.
const (
	DefaultSize         = 250
	DefaultMaxBytes     = 1_000_000
	DefaultMaxDimension = 4096
)

// Upload errors. Both wrap domain.ErrValidation.
var (
	ErrUnsupportedImage = fmt.Errorf("%w: please upload an image", domain.ErrValidation)
	ErrImageTooLarge    = fmt.Errorf("%w: image is too large", domain.ErrValidation)
)

// acceptedExtensions maps file extensions to the content type the bytes must sniff as.
var acceptedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Processor turns raw uploads into stored avatars.
type Processor struct {
	size         int
	maxBytes     int64
	maxDimension int
}

// NewProcessor creates a Processor producing size×size images from uploads
// of at most maxBytes. Non-positive values fall back to the defaults.
func NewProcessor(size int, maxBytes int64) *Processor {
	if size <= 0 {
		size = DefaultSize
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Processor{size: size, maxBytes: maxBytes, maxDimension: DefaultMaxDimension}
}

// WithMaxDimension limits the width and height of decoded uploads to n pixels.
// A non-positive n keeps the default.
func (p *Processor) WithMaxDimension(n int) *Processor {
	if n > 0 {
		p.maxDimension = n
	}
	return p
}

// MaxBytes returns the upload size limit.
func (p *Processor) MaxBytes() int64 {
	return p.maxBytes
}

// Check validates filename and data without decoding the image.
func (p *Processor) Check(filename string, data []byte) error {
	if int64(len(data)) > p.maxBytes {
		return ErrImageTooLarge
	}
	if len(data) == 0 {
		return ErrUnsupportedImage
	}

	want, ok := acceptedExtensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return ErrUnsupportedImage
	}
	if http.DetectContentType(data) != want {
		return ErrUnsupportedImage
	}
	return nil
}

// Process validates the upload, crops it to a centered square, scales it to
// the configured size and encodes it as PNG.
func (p *Processor) Process(filename string, data []byte) ([]byte, error) {
	if err := p.Check(filename, data); err != nil {
		return nil, err
	}

	isPNG := http.DetectContentType(data) == "image/png"

	// Dimensions are read from the header so an oversized image is never
	// allocated in full.
	var (
		cfg image.Config
		err error
	)
	if isPNG {
		cfg, err = png.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width > p.maxDimension || cfg.Height > p.maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels per side",
			ErrUnsupportedImage, cfg.Width, cfg.Height, p.maxDimension)
	}

	var src image.Image
	if isPNG {
		src, err = png.Decode(bytes.NewReader(data))
	} else {
		src, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerSquare(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// centerSquare returns the largest square centered in r.
func centerSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w == h {
		return r
	}
	side := min(w, h)
	x0 := r.Min.X + (w-side)/2
	y0 := r.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
