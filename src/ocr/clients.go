package ocr

import (
	"context"
	"sync"
	"time"

	"artifact-scanner/src/logutil"
)

// closeWait bounds how long Close waits for borrowed clients to come back.
const closeWait = 5 * time.Second

type closer interface {
	Close() error
}

// clientPool lends out clients one call at a time. Only clients that are
// back in the pool get closed.
type clientPool[C closer] struct {
	free chan C
	size int

	done chan struct{}
	once sync.Once
}

func newClientPool[C closer](clients []C) *clientPool[C] {
	p := &clientPool[C]{
		free: make(chan C, len(clients)),
		size: len(clients),
		done: make(chan struct{}),
	}
	for _, c := range clients {
		p.free <- c
	}
	return p
}

// get borrows a client. It fails with ErrClosed once close has started.
func (p *clientPool[C]) get(ctx context.Context) (C, error) {
	var zero C
	select {
	case <-p.done:
		return zero, ErrClosed
	default:
	}
	select {
	case c := <-p.free:
		return c, nil
	case <-p.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (p *clientPool[C]) put(c C) { p.free <- c }

// close stops lending and closes every client as it comes back. Clients
// still borrowed after wait are left open and logged.
func (p *clientPool[C]) close(wait time.Duration) error {
	first := false
	p.once.Do(func() {
		close(p.done)
		first = true
	})
	if !first {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	var firstErr error
	for n := 0; n < p.size; n++ {
		select {
		case c := <-p.free:
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		case <-timer.C:
			logutil.Warn(logutil.Fields{"borrowed": p.size - n}, "ocr: clients still busy at close, leaving them open")
			return firstErr
		}
	}
	return firstErr
}
