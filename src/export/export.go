// Package export writes scan results to files, the clipboard or Redis.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/config"
	"artifact-scanner/src/logutil"
	"artifact-scanner/src/scanner"
)

// Batch is one scan's output as handed to sinks. Records are validated and
// in traversal order.
type Batch struct {
	SessionID string
	Records   []artifact.Artifact
	Stats     scanner.ErrorStat
	Outcome   scanner.Outcome
	Finished  time.Time
}

func FromReport(r scanner.Report) Batch {
	return Batch{
		SessionID: r.SessionID,
		Records:   r.Records,
		Stats:     r.Stats,
		Outcome:   r.Outcome,
		Finished:  r.Finished,
	}
}

func (b Batch) stamp() string {
	t := b.Finished
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("20060102_150405")
}

type Sink interface {
	Name() string
	Export(ctx context.Context, b Batch) error
}

// Multi exports to every sink, continuing past failures.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Export(ctx context.Context, b Batch) error {
	var errs []error
	for _, s := range m {
		if err := s.Export(ctx, b); err != nil {
			logutil.Error(logutil.Fields{"sink": s.Name(), "error": err}, "export: failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		logutil.Info(logutil.Fields{"sink": s.Name(), "records": len(b.Records)}, "export: done")
	}
	return errors.Join(errs...)
}

// Close releases sinks holding connections.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Build returns one sink per format. Redis sinks connect immediately.
func Build(ctx context.Context, formats []string, cfg *config.Config) (Multi, error) {
	var sinks Multi
	for _, f := range formats {
		switch f {
		case config.FormatGOOD:
			sinks = append(sinks, &GOODSink{Dir: cfg.OutputDir})
		case config.FormatCSV:
			sinks = append(sinks, &CSVSink{Dir: cfg.OutputDir})
		case config.FormatClipboard:
			sinks = append(sinks, NewClipboardSink())
		case config.FormatRedis:
			rs, err := DialRedis(ctx, RedisOptions{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
				Key:      cfg.RedisKey,
			})
			if err != nil {
				_ = sinks.Close()
				return nil, err
			}
			sinks = append(sinks, rs)
		default:
			_ = sinks.Close()
			return nil, fmt.Errorf("export: unknown format %q", f)
		}
	}
	return sinks, nil
}
