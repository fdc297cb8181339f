//go:build !windows

package control

// EnableDPIAwareness is a no-op outside Windows.
func EnableDPIAwareness() {}
