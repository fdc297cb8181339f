// Package control drives the game window: pointer clicks, wheel scrolls and
// window placement. Every action is serialized and rate limited because the
// target UI consumes input strictly in order.
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"artifact-scanner/src/geometry"
	"artifact-scanner/src/logutil"
)

var (
	ErrWindowNotFound  = errors.New("window not found")
	ErrWindowLost      = errors.New("window handle is stale")
	ErrWindowMinimized = errors.New("window is minimized")
)

// Controller is the input/window capability the scanner depends on.
type Controller interface {
	MoveAndClick(ctx context.Context, p geometry.Point) error
	// Scroll turns the wheel by ticks; positive scrolls the list down.
	Scroll(ctx context.Context, ticks int) error
	WindowRect(ctx context.Context) (geometry.Rect, error)
	Activate(ctx context.Context) error
}

// ControlError is fatal for the scan that receives it.
type ControlError struct {
	Op  string
	Err error
}

func (e *ControlError) Error() string { return fmt.Sprintf("control %s: %v", e.Op, e.Err) }

func (e *ControlError) Unwrap() error { return e.Err }

// window is the platform half: finding, placing and focusing the target.
type window interface {
	rect() (geometry.Rect, error)
	activate() error
	// alive returns ErrWindowLost once the handle no longer names the window
	// it was opened for.
	alive() error
}

// input is the OS event half.
type input interface {
	move(p geometry.Point)
	click()
	scroll(ticks int)
}

type Options struct {
	WindowTitle string
	// ActionsPerSecond bounds how fast events reach the OS. Zero means 50.
	ActionsPerSecond float64
	// Settle is slept after activating the window.
	Settle time.Duration
}

// Desktop controls a real window.
type Desktop struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	win     window
	in      input
	settle  time.Duration
}

// Open finds the window by title.
func Open(opts Options) (*Desktop, error) {
	w, err := openWindow(opts.WindowTitle)
	if err != nil {
		return nil, &ControlError{Op: "open", Err: err}
	}
	logutil.Info(logutil.Fields{"title": opts.WindowTitle}, "control: window found")
	return newDesktop(w, robotInput{}, opts), nil
}

func newDesktop(w window, in input, opts Options) *Desktop {
	aps := opts.ActionsPerSecond
	if aps <= 0 {
		aps = 50
	}
	return &Desktop{
		limiter: rate.NewLimiter(rate.Limit(aps), 1),
		win:     w,
		in:      in,
		settle:  opts.Settle,
	}
}

// acquire takes the device lock and a rate token. On success the caller must
// call d.mu.Unlock.
func (d *Desktop) acquire(ctx context.Context, op string) error {
	d.mu.Lock()
	if err := d.limiter.Wait(ctx); err != nil {
		d.mu.Unlock()
		return err
	}
	if err := d.win.alive(); err != nil {
		d.mu.Unlock()
		return &ControlError{Op: op, Err: err}
	}
	return nil
}

func (d *Desktop) MoveAndClick(ctx context.Context, p geometry.Point) error {
	if err := d.acquire(ctx, "click"); err != nil {
		return err
	}
	defer d.mu.Unlock()
	d.in.move(p)
	d.in.click()
	return nil
}

func (d *Desktop) Scroll(ctx context.Context, ticks int) error {
	if ticks == 0 {
		return nil
	}
	if err := d.acquire(ctx, "scroll"); err != nil {
		return err
	}
	defer d.mu.Unlock()
	d.in.scroll(ticks)
	return nil
}

func (d *Desktop) WindowRect(ctx context.Context) (geometry.Rect, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Rect{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.win.alive(); err != nil {
		return geometry.Rect{}, &ControlError{Op: "window-rect", Err: err}
	}
	r, err := d.win.rect()
	if err != nil {
		return geometry.Rect{}, &ControlError{Op: "window-rect", Err: err}
	}
	return r, nil
}

func (d *Desktop) Activate(ctx context.Context) error {
	if err := d.acquire(ctx, "activate"); err != nil {
		return err
	}
	defer d.mu.Unlock()
	if err := d.win.activate(); err != nil {
		return &ControlError{Op: "activate", Err: err}
	}
	if d.settle > 0 {
		select {
		case <-time.After(d.settle):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
