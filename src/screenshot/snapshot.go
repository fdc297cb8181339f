package screenshot

import (
	"context"
	"sync"

	"artifact-scanner/src/geometry"
)

// Snapshot grabs a whole window once per Refresh and serves every Capture by
// cropping from that grab, so all regions of one item come from the same
// frame. Captures outside the grabbed rect go to the source directly.
type Snapshot struct {
	src Capturer

	mu    sync.RWMutex
	frame *Frame
}

func NewSnapshot(src Capturer) *Snapshot { return &Snapshot{src: src} }

func (s *Snapshot) Bounds() geometry.Rect { return s.src.Bounds() }

func (s *Snapshot) Refresh(ctx context.Context, rect geometry.Rect) error {
	f, err := s.src.Capture(ctx, rect)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
	return nil
}

// Invalidate drops the current frame so the next Capture reads live pixels.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	s.frame = nil
	s.mu.Unlock()
}

func (s *Snapshot) Capture(ctx context.Context, rect geometry.Rect) (*Frame, error) {
	s.mu.RLock()
	f := s.frame
	s.mu.RUnlock()

	if f == nil || !f.Rect.ContainsRect(rect) {
		return s.src.Capture(ctx, rect)
	}
	if err := ctx.Err(); err != nil {
		return nil, &CaptureError{Op: "snapshot", Rect: rect, Err: err}
	}
	return &Frame{Rect: rect, Image: crop(f.Image, f.Rect.Min(), rect), At: f.At}, nil
}
