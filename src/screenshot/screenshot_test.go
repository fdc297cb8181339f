package screenshot

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"artifact-scanner/src/geometry"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func TestDesktopCapture(t *testing.T) {
	// Needs a display; only checks that nothing panics.
	d := NewDesktop()
	_, err := d.Capture(context.Background(), geometry.R(0, 0, 100, 100))
	if err != nil {
		t.Logf("Failed to capture region (expected in headless environment): %v", err)
	}
}

func TestDesktopCaptureInvalidRegion(t *testing.T) {
	_, err := NewDesktop().Capture(context.Background(), geometry.R(0, 0, 0, 0))
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CaptureError for invalid region dimensions, got %v", err)
	}
}

func TestDisplayBounds(t *testing.T) {
	if _, err := DisplayBounds(); err != nil {
		t.Logf("Failed to get display bounds (expected in headless environment): %v", err)
	}
}

func TestStillCaptureCrops(t *testing.T) {
	s := NewStill(gradient(64, 32), geometry.Pt(100, 200))
	f, err := s.Capture(context.Background(), geometry.R(110, 205, 4, 3))
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if f.Image.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Errorf("frame bounds = %v", f.Image.Bounds())
	}
	if got := f.Image.RGBAAt(0, 0); got.R != 10 || got.G != 5 {
		t.Errorf("pixel (0,0) = %v, want R=10 G=5", got)
	}
	if f.Rect != geometry.R(110, 205, 4, 3) {
		t.Errorf("frame rect = %v", f.Rect)
	}
}

func TestStillCaptureOutOfBounds(t *testing.T) {
	s := NewStill(gradient(10, 10), geometry.Pt(0, 0))
	_, err := s.Capture(context.Background(), geometry.R(5, 5, 10, 10))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestStillCaptureCancelled(t *testing.T) {
	s := NewStill(gradient(10, 10), geometry.Pt(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Capture(ctx, geometry.R(0, 0, 2, 2))
	var ce *CaptureError
	if !errors.As(err, &ce) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected CaptureError wrapping context.Canceled, got %v", err)
	}
}

func TestFramesDoNotShareMemory(t *testing.T) {
	s := NewStill(gradient(10, 10), geometry.Pt(0, 0))
	a, _ := s.Capture(context.Background(), geometry.R(0, 0, 2, 2))
	a.Image.SetRGBA(0, 0, color.RGBA{A: 255})
	b, _ := s.Capture(context.Background(), geometry.R(0, 0, 2, 2))
	if b.Image.RGBAAt(0, 0).B != 7 {
		t.Error("writing to one frame changed another")
	}
}

type countingCapturer struct {
	*Still
	calls int
}

func (c *countingCapturer) Capture(ctx context.Context, rect geometry.Rect) (*Frame, error) {
	c.calls++
	return c.Still.Capture(ctx, rect)
}

func TestSnapshotServesFromOneGrab(t *testing.T) {
	src := &countingCapturer{Still: NewStill(gradient(50, 50), geometry.Pt(0, 0))}
	snap := NewSnapshot(src)
	if err := snap.Refresh(context.Background(), geometry.R(0, 0, 40, 40)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := snap.Capture(context.Background(), geometry.R(i, i, 5, 5)); err != nil {
			t.Fatalf("Capture: %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source captured %d times, want 1", src.calls)
	}

	// Outside the grabbed rect falls through to the source.
	if _, err := snap.Capture(context.Background(), geometry.R(45, 45, 2, 2)); err != nil {
		t.Fatalf("Capture outside snapshot: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("source captured %d times, want 2", src.calls)
	}

	snap.Invalidate()
	if _, err := snap.Capture(context.Background(), geometry.R(0, 0, 2, 2)); err != nil {
		t.Fatalf("Capture after invalidate: %v", err)
	}
	if src.calls != 3 {
		t.Errorf("source captured %d times, want 3", src.calls)
	}
}

type slowCapturer struct{ *Still }

func (s slowCapturer) Capture(ctx context.Context, rect geometry.Rect) (*Frame, error) {
	select {
	case <-time.After(time.Second):
		return s.Still.Capture(ctx, rect)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestWithTimeoutWrapsDeadline(t *testing.T) {
	c := slowCapturer{NewStill(gradient(4, 4), geometry.Pt(0, 0))}
	_, err := WithTimeout(context.Background(), c, geometry.R(0, 0, 1, 1), 10*time.Millisecond)
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CaptureError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestColor(t *testing.T) {
	s := NewStill(gradient(20, 20), geometry.Pt(0, 0))
	c, err := Color(context.Background(), s, geometry.Pt(3, 4))
	if err != nil {
		t.Fatalf("Color: %v", err)
	}
	if c.R != 3 || c.G != 4 {
		t.Errorf("Color = %v", c)
	}
}

func TestLoadStill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, gradient(8, 8)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s, err := LoadStill(path, geometry.Pt(0, 0))
	if err != nil {
		t.Fatalf("LoadStill: %v", err)
	}
	if s.Bounds() != geometry.R(0, 0, 8, 8) {
		t.Errorf("Bounds = %v", s.Bounds())
	}

	if _, err := LoadStill(filepath.Join(t.TempDir(), "missing.png"), geometry.Pt(0, 0)); err == nil {
		t.Error("expected error for missing file")
	}
}
