package scanner

import (
	"context"
	"errors"
	"fmt"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/control"
	"artifact-scanner/src/ocr"
	"artifact-scanner/src/screenshot"
)

// Category names a kind of failure in ErrorStat and in the summary.
type Category string

const (
	CategoryCaptureTimeout   Category = "capture-timeout"
	CategoryLowConfidence    Category = "recognition-low-confidence"
	CategoryRecognitionError Category = "recognition-error"
	CategoryParseMismatch    Category = "parse-mismatch"
	CategoryValidationFailed Category = "validation-failed"
	CategoryNavigationStuck  Category = "navigation-stuck"
	CategoryControlLost      Category = "control-lost"
	CategoryCancelled        Category = "cancelled"
)

// Categories lists every category in summary order.
var Categories = []Category{
	CategoryCaptureTimeout,
	CategoryLowConfidence,
	CategoryRecognitionError,
	CategoryParseMismatch,
	CategoryValidationFailed,
	CategoryNavigationStuck,
	CategoryControlLost,
	CategoryCancelled,
}

// Severity is the decision a failure leads to.
type Severity int

const (
	// SeverityRetryable re-captures the same item.
	SeverityRetryable Severity = iota
	// SeveritySkip gives up on the item and moves on.
	SeveritySkip
	// SeverityFatal ends the scan.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityRetryable:
		return "retryable"
	case SeveritySkip:
		return "skip"
	case SeverityFatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// NavigationStuckError means the UI stopped advancing. Reference is the last
// text read from the reference region, or the repeated record for the
// duplicate guard.
type NavigationStuckError struct {
	Attempts  int
	Reference string
}

func (e *NavigationStuckError) Error() string {
	return fmt.Sprintf("navigation stuck after %d attempts at %q", e.Attempts, e.Reference)
}

// CancelledError ends a scan the user stopped. It is not a failure.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "scan cancelled: " + e.Err.Error() }

func (e *CancelledError) Unwrap() error { return e.Err }

// Classify maps err to a category and the decision it leads to. Unknown
// errors are treated as recognition errors, which are retried.
func Classify(err error) (Category, Severity) {
	var (
		cancelled *CancelledError
		stuck     *NavigationStuckError
		ctrl      *control.ControlError
		capture   *screenshot.CaptureError
		lowConf   *artifact.LowConfidenceError
		parse     *artifact.ParseError
		invalid   *artifact.ValidationError
		recog     *ocr.RecognitionError
	)
	switch {
	case errors.As(err, &cancelled), errors.Is(err, context.Canceled):
		return CategoryCancelled, SeverityFatal
	case errors.As(err, &stuck):
		return CategoryNavigationStuck, SeverityFatal
	case errors.As(err, &ctrl):
		return CategoryControlLost, SeverityFatal
	case errors.As(err, &capture):
		return CategoryCaptureTimeout, SeverityRetryable
	case errors.As(err, &lowConf):
		return CategoryLowConfidence, SeverityRetryable
	case errors.As(err, &parse):
		return CategoryParseMismatch, SeverityRetryable
	case errors.As(err, &invalid):
		return CategoryValidationFailed, SeveritySkip
	case errors.As(err, &recog):
		return CategoryRecognitionError, SeverityRetryable
	}
	return CategoryRecognitionError, SeverityRetryable
}

var hints = map[Category]string{
	CategoryCaptureTimeout:   "keep the game window visible and raise CAPTURE_TIMEOUT_MS",
	CategoryLowConfidence:    "increase BASE_DELAY_MS or turn off fast mode",
	CategoryRecognitionError: "check the OCR model files and OCR_LANG",
	CategoryParseMismatch:    "use a supported resolution and the default UI language",
	CategoryValidationFailed: "the item was read inconsistently; rescan it by hand",
	CategoryNavigationStuck:  "make sure the inventory window is focused and not covered",
	CategoryControlLost:      "the game window closed or was recreated; restart the scan",
	CategoryCancelled:        "",
}

// Hint returns the remediation advice shown for c.
func Hint(c Category) string { return hints[c] }
