package scanner

import (
	"context"
	"time"

	"artifact-scanner/src/logutil"
	"artifact-scanner/src/messages"
)

// Observer receives scan events synchronously from the machine goroutine.
type Observer interface {
	OnEvent(messages.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(messages.Event)

func (f ObserverFunc) OnEvent(e messages.Event) { f(e) }

// Observers fans an event out in order.
type Observers []Observer

func (obs Observers) OnEvent(e messages.Event) {
	for _, o := range obs {
		o.OnEvent(e)
	}
}

// LogObserver writes every event through logutil.
type LogObserver struct{}

func (LogObserver) OnEvent(e messages.Event) {
	switch ev := e.(type) {
	case messages.StateChanged:
		logutil.Debug(logutil.Fields{"session_id": ev.SessionID, "item": ev.Item, "state": ev.To, "from": ev.From}, "scan: state")
	case messages.ItemAccepted:
		logutil.Info(logutil.Fields{
			"session_id": ev.SessionID,
			"item":       ev.Item,
			"record":     ev.RecordID,
			"attempts":   ev.Attempts,
			"elapsed_ms": ev.Elapsed.Milliseconds(),
			"delay_ms":   ev.Delay.Milliseconds(),
		}, "scan: accepted "+ev.Summary)
	case messages.ItemSkipped:
		logutil.Warn(logutil.Fields{"session_id": ev.SessionID, "item": ev.Item, "category": ev.Category, "error": ev.Err}, "scan: item skipped")
	case messages.ItemFiltered:
		logutil.Debug(logutil.Fields{"session_id": ev.SessionID, "item": ev.Item, "reason": ev.Reason}, "scan: item filtered")
	case messages.ErrorCounted:
		logutil.Debug(logutil.Fields{"session_id": ev.SessionID, "item": ev.Item, "category": ev.Category, "attempt": ev.Attempt, "error": ev.Err}, "scan: error")
	case messages.ScanFinished:
		fields := logutil.Fields{
			"session_id": ev.SessionID,
			"outcome":    ev.Outcome,
			"accepted":   ev.Accepted,
			"skipped":    ev.Skipped,
			"filtered":   ev.Filtered,
			"elapsed_ms": ev.Elapsed.Milliseconds(),
		}
		if ev.Err != nil {
			fields["error"] = ev.Err
			logutil.Warn(fields, "scan: finished")
			return
		}
		logutil.Info(fields, "scan: finished")
	}
}

// Clock is time as the machine sees it.
type Clock interface {
	Now() time.Time
	// Sleep waits d or until ctx ends, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
