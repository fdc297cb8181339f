package export

import (
	"context"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

func initClipboard() error {
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	return clipboardErr
}

// ClipboardSink puts the GOOD document on the system clipboard.
type ClipboardSink struct {
	mu    sync.Mutex
	write func([]byte) error
}

func NewClipboardSink() *ClipboardSink {
	return &ClipboardSink{write: writeClipboard}
}

func writeClipboard(data []byte) error {
	if err := initClipboard(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

func (s *ClipboardSink) Name() string { return "clipboard" }

// Export serializes writes so concurrent exports do not interleave.
func (s *ClipboardSink) Export(ctx context.Context, b Batch) error {
	data, err := EncodeGOOD(b.Records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(data)
}
