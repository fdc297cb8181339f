package scanner

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/layout"
	"artifact-scanner/src/screenshot"
	"artifact-scanner/src/worker"
)

// Reader captures and recognizes the regions of the item on screen. Layout
// must already be resolved against the window. A Reader is not safe for
// concurrent use.
type Reader struct {
	Capturer         screenshot.Capturer
	Pool             *worker.Pool
	Layout           layout.Layout
	CaptureTimeout   time.Duration
	RecognizeTimeout time.Duration

	frames []worker.Task
}

// Read is Capture followed by Recognize.
func (r *Reader) Read(ctx context.Context) (artifact.Readings, error) {
	rd, err := r.Capture(ctx)
	if err != nil {
		return rd, err
	}
	err = r.Recognize(ctx, &rd)
	return rd, err
}

// Capture grabs every layout region of the current item. The returned
// readings only carry the color samples; frames are kept for Recognize.
func (r *Reader) Capture(ctx context.Context) (artifact.Readings, error) {
	var rd artifact.Readings
	if ref, ok := r.Capturer.(screenshot.Refresher); ok {
		rctx, cancel := r.captureContext(ctx)
		err := ref.Refresh(rctx, r.Layout.Window())
		cancel()
		if err != nil {
			var ce *screenshot.CaptureError
			if !errors.As(err, &ce) {
				err = &screenshot.CaptureError{Op: "refresh", Rect: r.Layout.Window(), Err: err}
			}
			return rd, err
		}
	}

	r.frames = r.frames[:0]
	for _, reg := range r.Layout.Regions() {
		f, err := screenshot.WithTimeout(ctx, r.Capturer, reg.Rect, r.CaptureTimeout)
		if err != nil {
			return rd, err
		}
		r.frames = append(r.frames, worker.Task{ID: reg.ID, Image: f.Image})
	}

	rd.RarityColor = r.sample(ctx, layout.SampleRarityColor)
	rd.LockColor = r.sample(ctx, layout.SampleLockColor)
	return rd, nil
}

func (r *Reader) captureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.CaptureTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.CaptureTimeout)
}

func (r *Reader) sample(ctx context.Context, id string) *color.RGBA {
	p, ok := r.Layout.Sample(id)
	if !ok {
		return nil
	}
	c, err := screenshot.Color(ctx, r.Capturer, p)
	if err != nil {
		return nil
	}
	return &c
}

// Recognize runs the captured frames through the pool and fills rd in
// layout order. Work already captured runs to completion even if ctx is
// cancelled; RecognizeTimeout still applies.
func (r *Reader) Recognize(ctx context.Context, rd *artifact.Readings) error {
	rctx, cancel := r.recognizeContext(ctx)
	defer cancel()

	for _, o := range r.Pool.Do(rctx, r.frames) {
		if o.Err != nil {
			return fmt.Errorf("recognize %s: %w", o.ID, o.Err)
		}
		reading := artifact.Reading{Text: o.Result.Text, Confidence: o.Result.Confidence}
		switch o.ID {
		case layout.ItemName:
			rd.Title = reading
		case layout.MainStatName:
			rd.MainName = reading
		case layout.MainStatValue:
			rd.MainValue = reading
		case layout.Level:
			rd.Level = reading
		case layout.Rarity:
			rd.Rarity = reading
		case layout.SubStat1, layout.SubStat2, layout.SubStat3, layout.SubStat4:
			rd.Subs[o.ID[len(o.ID)-1]-'1'] = reading
		case layout.Equip:
			rd.Equip = reading
		}
	}
	return nil
}

func (r *Reader) recognizeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if r.RecognizeTimeout <= 0 {
		return base, func() {}
	}
	return context.WithTimeout(base, r.RecognizeTimeout)
}

// Text captures and recognizes a single region, dispatch or auxiliary.
func (r *Reader) Text(ctx context.Context, id string) (string, error) {
	reg, ok := r.Layout.Lookup(id)
	if !ok {
		return "", &layout.MissingRegionError{Layout: r.Layout.Name(), IDs: []string{id}}
	}
	f, err := screenshot.WithTimeout(ctx, r.Capturer, reg.Rect, r.CaptureTimeout)
	if err != nil {
		return "", err
	}
	rctx, cancel := r.recognizeContext(ctx)
	defer cancel()
	out := r.Pool.Do(rctx, []worker.Task{{ID: id, Image: f.Image}})[0]
	if out.Err != nil {
		return "", fmt.Errorf("recognize %s: %w", id, out.Err)
	}
	return out.Result.Text, nil
}
