// Package ocr turns cropped screen regions into text with a confidence score.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"
)

var (
	// ErrEmptyRegion is returned for nil or zero-area input.
	ErrEmptyRegion = errors.New("ocr: empty region")
	// ErrUnsupportedFormat is returned for pixel formats the engine cannot read.
	ErrUnsupportedFormat = errors.New("ocr: unsupported pixel format")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ocr: engine closed")
)

// Result is the recognized text of one region. Confidence is in [0, 1] and
// is informative, not calibrated. Unreadable text is an empty or
// low-confidence Result, never an error.
type Result struct {
	Text       string
	Confidence float64
}

type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (Result, error)
}

// Engine owns a loaded model. Close releases it.
type Engine interface {
	Recognizer
	Close() error
}

// RecognitionError reports malformed input or a failure of the backend.
type RecognitionError struct {
	Op  string
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Op, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// CheckInput rejects images the engine will not read.
func CheckInput(img image.Image) error {
	if img == nil {
		return &RecognitionError{Op: "check", Err: ErrEmptyRegion}
	}
	if img.Bounds().Empty() {
		return &RecognitionError{Op: "check", Err: ErrEmptyRegion}
	}
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Gray, *image.YCbCr, *image.Paletted:
		return nil
	default:
		return &RecognitionError{Op: "check", Err: fmt.Errorf("%w: %T", ErrUnsupportedFormat, img)}
	}
}

// NormalizeText trims and removes all whitespace. Game text has no
// meaningful spaces; the recognizer inserts them between glyphs.
func NormalizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
