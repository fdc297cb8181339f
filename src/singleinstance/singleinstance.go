// Package singleinstance keeps one scanner per machine in charge of the
// mouse, and lets other invocations stop it or ask how far it got.
//
// The resident listens on loopback. Each connection sends one line:
//
//	PING   -> PONG
//	STOP   -> OK
//	STATUS -> OK, then one JSON line
//
// Anything else gets ERROR and a message.
package singleinstance

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned by Claim when another scanner answers.
	ErrAlreadyRunning = errors.New("another scanner is already running")
	// ErrNotRunning is returned by Client calls when no scanner answers.
	ErrNotRunning = errors.New("no scanner is running")
)

// Handler serves remote commands for the resident scanner.
type Handler interface {
	// Stop asks the running scan to end. It must not block.
	Stop()
	// Status returns a JSON-serializable progress value.
	Status() any
}

// Server owns the loopback endpoint.
type Server interface {
	// Port returns the bound TCP port.
	Port() int
	// Close releases ownership.
	Close() error
}

// Claim makes this process the resident scanner. It fails with
// ErrAlreadyRunning when a resident answers PING.
func Claim(ctx context.Context, h Handler) (Server, error) {
	if port, ok := DetectResidentPort(ctx); ok {
		return nil, fmt.Errorf("%w (port %d)", ErrAlreadyRunning, port)
	}
	s := newTCPServer(h)
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
