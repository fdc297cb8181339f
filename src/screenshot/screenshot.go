package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"

	"artifact-scanner/src/geometry"
)

var (
	ErrNoDisplay   = errors.New("no active displays found")
	ErrOutOfBounds = errors.New("rect outside capturable area")
)

// Frame is a captured pixel buffer tagged with the screen rect it came from.
// Image bounds are always (0,0)-(Rect.Width,Rect.Height).
type Frame struct {
	Rect  geometry.Rect
	Image *image.RGBA
	At    time.Time
}

// Capturer returns the pixels of a screen rectangle.
type Capturer interface {
	Capture(ctx context.Context, rect geometry.Rect) (*Frame, error)
	// Bounds is the addressable area in screen coordinates.
	Bounds() geometry.Rect
}

// Refresher is implemented by capturers that serve regions from one grabbed
// frame. Refresh grabs a new one.
type Refresher interface {
	Refresh(ctx context.Context, rect geometry.Rect) error
}

// CaptureError reports a failed capture. Callers treat it as transient.
type CaptureError struct {
	Op   string
	Rect geometry.Rect
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s %v: %v", e.Op, e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Desktop captures straight from the screen on every call.
type Desktop struct{}

func NewDesktop() *Desktop { return &Desktop{} }

// Bounds is the union of all active displays.
func (d *Desktop) Bounds() geometry.Rect {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return geometry.Rect{}
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return geometry.FromImage(union)
}

func (d *Desktop) Capture(ctx context.Context, rect geometry.Rect) (*Frame, error) {
	if rect.Empty() {
		return nil, &CaptureError{Op: "desktop", Rect: rect, Err: fmt.Errorf("invalid region dimensions: width=%d, height=%d", rect.Width, rect.Height)}
	}
	bounds := d.Bounds()
	if bounds.Empty() {
		return nil, &CaptureError{Op: "desktop", Rect: rect, Err: ErrNoDisplay}
	}
	if !bounds.ContainsRect(rect) {
		return nil, &CaptureError{Op: "desktop", Rect: rect, Err: ErrOutOfBounds}
	}

	type result struct {
		img *image.RGBA
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		img, err := screenshot.CaptureRect(rect.ImageRect())
		resCh <- result{img: img, err: err}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			return nil, &CaptureError{Op: "desktop", Rect: rect, Err: r.err}
		}
		return &Frame{Rect: rect, Image: normalize(r.img), At: time.Now()}, nil
	case <-ctx.Done():
		// The OS call finishes in the background and its result is dropped.
		return nil, &CaptureError{Op: "desktop", Rect: rect, Err: ctx.Err()}
	}
}

// DisplayBounds returns the bounds of the primary display.
func DisplayBounds() (geometry.Rect, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return geometry.Rect{}, ErrNoDisplay
	}
	return geometry.FromImage(screenshot.GetDisplayBounds(0)), nil
}

// WithTimeout runs one capture under its own deadline.
func WithTimeout(ctx context.Context, c Capturer, rect geometry.Rect, d time.Duration) (*Frame, error) {
	if d <= 0 {
		return c.Capture(ctx, rect)
	}
	cctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	f, err := c.Capture(cctx, rect)
	if err != nil {
		var ce *CaptureError
		if !errors.As(err, &ce) {
			err = &CaptureError{Op: "capture", Rect: rect, Err: err}
		}
		return nil, err
	}
	return f, nil
}

// Color samples a single pixel.
func Color(ctx context.Context, c Capturer, p geometry.Point) (color.RGBA, error) {
	f, err := c.Capture(ctx, geometry.R(p.X, p.Y, 1, 1))
	if err != nil {
		return color.RGBA{}, err
	}
	return f.Image.RGBAAt(0, 0), nil
}

// crop copies rect (screen coordinates) out of src, whose top-left corner sits
// at origin. The copy owns its pixels so frames can be handed to concurrent
// recognizers.
func crop(src *image.RGBA, origin geometry.Point, rect geometry.Rect) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	sr := rect.Translate(-origin.X, -origin.Y).ImageRect().Add(src.Bounds().Min)
	draw.Copy(dst, image.Point{}, src, sr, draw.Src, nil)
	return dst
}

// normalize returns img with bounds starting at the origin.
func normalize(img *image.RGBA) *image.RGBA {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	return toRGBA(img)
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}
