package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"artifact-scanner/src/export"
	"artifact-scanner/src/logutil"
	"artifact-scanner/src/scanner"
)

var ErrNothingToExport = errors.New("no records to export")

// Runner is a scan that always returns its report.
type Runner interface {
	Run(ctx context.Context) scanner.Report
}

type Options struct {
	Machine Runner
	// Sinks receive the report's records, also after an aborted run.
	Sinks []export.Sink
	// OnReport is called with the report before exporting.
	OnReport func(scanner.Report)
}

// Execute runs one scan and exports whatever it gathered. The returned error
// is a sink error or ErrNothingToExport; how the scan itself ended is in the
// report.
func Execute(ctx context.Context, opts Options) (scanner.Report, error) {
	if opts.Machine == nil {
		return scanner.Report{}, errors.New("Machine is required")
	}

	report := opts.Machine.Run(ctx)
	if opts.OnReport != nil {
		opts.OnReport(report)
	}

	if len(report.Records) == 0 {
		logutil.Warn(logutil.Fields{"session_id": report.SessionID, "outcome": report.Outcome}, "session: nothing to export")
		return report, ErrNothingToExport
	}
	if len(opts.Sinks) == 0 {
		return report, nil
	}

	// Export even when the scan was cancelled.
	if err := export.Multi(opts.Sinks).Export(context.WithoutCancel(ctx), export.FromReport(report)); err != nil {
		return report, fmt.Errorf("export: %w", err)
	}
	return report, nil
}

// SummaryTarget prints the end-of-run summary.
type SummaryTarget struct {
	Writer io.Writer
}

func (t SummaryTarget) OnReport(r scanner.Report) {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprint(w, r.Summary())
}
