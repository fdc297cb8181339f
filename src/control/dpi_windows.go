//go:build windows

package control

import (
	"golang.org/x/sys/windows"

	"artifact-scanner/src/logutil"
)

// EnableDPIAwareness makes window and capture coordinates physical pixels.
// Without it a scaled desktop reports logical sizes and every region misses.
func EnableDPIAwareness() {
	shcore := windows.NewLazySystemDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			logutil.Debug(nil, "DPI: per-monitor awareness set")
		} else {
			logutil.Warn(logutil.Fields{"code": ret}, "DPI: SetProcessDpiAwareness failed")
		}
		return
	}

	user32 := windows.NewLazySystemDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err != nil {
		logutil.Warn(nil, "DPI: no awareness API available")
		return
	}
	if ret, _, _ := setProcessDPIAware.Call(); ret == 0 {
		logutil.Warn(nil, "DPI: SetProcessDPIAware failed")
		return
	}
	logutil.Debug(nil, "DPI: system awareness set (fallback)")
}
