package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"artifact-scanner/src/scanner"
	"artifact-scanner/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type tally struct {
	ok, notRunning, failed int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-resident",
		Short:         "Hammer the resident scanner's control port with concurrent clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "status" && opts.mode != "ping" {
				return fmt.Errorf("unknown mode %q (want status or ping)", opts.mode)
			}
			t := runWithOptions(cmd.Context(), *opts, cmd.OutOrStdout())
			if t.notRunning == int32(opts.n) {
				return singleinstance.ErrNotRunning
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "status", "status|ping: full STATUS round trip or resident detection only")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func runWithOptions(ctx context.Context, opts stressOptions, w io.Writer) tally {
	var wg sync.WaitGroup
	var t tally

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, opts.deadline)
			defer cancel()

			var err error
			if opts.mode == "ping" {
				if _, ok := singleinstance.DetectResidentPort(cctx); !ok {
					err = singleinstance.ErrNotRunning
				}
			} else {
				var p scanner.Progress
				err = singleinstance.NewClient().Status(cctx, &p)
			}
			switch {
			case err == nil:
				atomic.AddInt32(&t.ok, 1)
			case errors.Is(err, singleinstance.ErrNotRunning):
				atomic.AddInt32(&t.notRunning, 1)
			default:
				atomic.AddInt32(&t.failed, 1)
			}
		}()
	}
	wg.Wait()
	fmt.Fprintf(w, "launched=%d ok=%d not_running=%d err=%d elapsed=%s\n",
		opts.n, t.ok, t.notRunning, t.failed, time.Since(start).Round(time.Millisecond))
	return t
}
