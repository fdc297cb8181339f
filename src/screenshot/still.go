package screenshot

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"time"

	_ "golang.org/x/image/bmp"

	"artifact-scanner/src/geometry"
)

// Still serves captures from a fixed image placed at a screen origin. It backs
// offline replay and tests.
type Still struct {
	img    *image.RGBA
	origin geometry.Point
	at     time.Time
}

func NewStill(img image.Image, origin geometry.Point) *Still {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		rgba = toRGBA(img)
	}
	return &Still{img: rgba, origin: origin, at: time.Now()}
}

// LoadStill decodes a PNG or BMP file.
func LoadStill(path string, origin geometry.Point) (*Still, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if format != "png" && format != "bmp" {
		return nil, fmt.Errorf("decode %s: unsupported format %s", path, format)
	}
	return NewStill(img, origin), nil
}

func (s *Still) Bounds() geometry.Rect {
	b := s.img.Bounds()
	return geometry.R(s.origin.X, s.origin.Y, b.Dx(), b.Dy())
}

func (s *Still) Capture(ctx context.Context, rect geometry.Rect) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Op: "still", Rect: rect, Err: err}
	}
	if rect.Empty() || !s.Bounds().ContainsRect(rect) {
		return nil, &CaptureError{Op: "still", Rect: rect, Err: ErrOutOfBounds}
	}
	return &Frame{Rect: rect, Image: crop(s.img, s.origin, rect), At: s.at}, nil
}
