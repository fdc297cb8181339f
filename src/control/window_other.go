//go:build !windows

package control

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"artifact-scanner/src/geometry"
)

type pidWindow struct {
	title string
	pid   int
}

func openWindow(title string) (window, error) {
	ids, err := robotgo.FindIds(title)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrWindowNotFound, title, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}
	return &pidWindow{title: title, pid: ids[0]}, nil
}

func (w *pidWindow) rect() (geometry.Rect, error) {
	x, y, width, height := robotgo.GetBounds(w.pid)
	if width <= 0 || height <= 0 {
		return geometry.Rect{}, ErrWindowMinimized
	}
	return geometry.R(x, y, width, height), nil
}

func (w *pidWindow) activate() error {
	return robotgo.ActivePid(w.pid)
}

func (w *pidWindow) alive() error {
	ok, err := robotgo.PidExists(w.pid)
	if err != nil || !ok {
		return ErrWindowLost
	}
	return nil
}
