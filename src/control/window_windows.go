//go:build windows

package control

import (
	"fmt"
	"syscall"

	"github.com/lxn/win"

	"artifact-scanner/src/geometry"
)

const unityWindowClass = "UnityWndClass"

type win32Window struct {
	title string
	hwnd  win.HWND
}

func findWindow(title string) (win.HWND, error) {
	name, err := syscall.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}
	class, err := syscall.UTF16PtrFromString(unityWindowClass)
	if err != nil {
		return 0, err
	}
	if h := win.FindWindow(class, name); h != 0 {
		return h, nil
	}
	// Cloud and some launcher builds use a different class.
	if h := win.FindWindow(nil, name); h != 0 {
		return h, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
}

func openWindow(title string) (window, error) {
	h, err := findWindow(title)
	if err != nil {
		return nil, err
	}
	return &win32Window{title: title, hwnd: h}, nil
}

// rect returns the client area in screen coordinates.
func (w *win32Window) rect() (geometry.Rect, error) {
	if win.IsIconic(w.hwnd) {
		return geometry.Rect{}, ErrWindowMinimized
	}
	var rc win.RECT
	if !win.GetClientRect(w.hwnd, &rc) {
		return geometry.Rect{}, fmt.Errorf("GetClientRect failed")
	}
	var origin win.POINT
	if !win.ClientToScreen(w.hwnd, &origin) {
		return geometry.Rect{}, fmt.Errorf("ClientToScreen failed")
	}
	return geometry.R(int(origin.X), int(origin.Y), int(rc.Right-rc.Left), int(rc.Bottom-rc.Top)), nil
}

func (w *win32Window) activate() error {
	if win.IsIconic(w.hwnd) {
		win.ShowWindow(w.hwnd, win.SW_RESTORE)
	}
	if !win.SetForegroundWindow(w.hwnd) {
		return fmt.Errorf("SetForegroundWindow refused")
	}
	return nil
}

func (w *win32Window) alive() error {
	if !win.IsWindow(w.hwnd) {
		return ErrWindowLost
	}
	// A recreated window keeps the title but gets a new handle.
	if h, err := findWindow(w.title); err == nil && h != w.hwnd {
		return ErrWindowLost
	}
	return nil
}
