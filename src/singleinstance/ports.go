package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550

	portStartEnv = "ARTIFACT_SCANNER_PORT_START"
	portEndEnv   = "ARTIFACT_SCANNER_PORT_END"
)

// portRange returns the inclusive range to bind and probe, clamped to
// [1024, 65535].
func portRange() (int, int) {
	start := envPort(portStartEnv, defaultPortStart)
	end := envPort(portEndEnv, defaultPortEnd)
	start = max(start, 1024)
	end = min(end, 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
