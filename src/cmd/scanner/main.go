package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"artifact-scanner/src/config"
	"artifact-scanner/src/control"
	"artifact-scanner/src/export"
	"artifact-scanner/src/hotkey"
	"artifact-scanner/src/layout"
	"artifact-scanner/src/logutil"
	"artifact-scanner/src/ocr"
	"artifact-scanner/src/runtimeinit"
	"artifact-scanner/src/scanner"
	"artifact-scanner/src/screenshot"
	"artifact-scanner/src/session"
	"artifact-scanner/src/singleinstance"
)

const activateSettle = 200 * time.Millisecond

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type scanOptions struct {
	envPath string
	verbose bool
}

// flagEnv maps scan flags onto configuration keys. Only flags set on the
// command line become overrides.
var flagEnv = map[string]string{
	"min-rarity":   "MIN_RARITY",
	"min-level":    "MIN_LEVEL",
	"fast":         "FAST_MODE",
	"base-delay":   "BASE_DELAY_MS",
	"max-retries":  "MAX_RETRIES",
	"threshold":    "CONFIDENCE_THRESHOLD",
	"stall-limit":  "STALL_LIMIT",
	"max-items":    "MAX_ITEMS",
	"formats":      "EXPORT_FORMATS",
	"output-dir":   "OUTPUT_DIR",
	"ignore-dup":   "IGNORE_DUP",
	"window-title": "WINDOW_TITLE",
	"capture":      "CAPTURE_BACKEND",
	"hotkey":       "INTERRUPT_HOTKEY",
}

func main() {
	if err := runWithArgs(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"scanner"}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Scan the artifact inventory into structured records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScanCmd(), newStopCmd(), newStatusCmd())
	return root
}

func newScanCmd() *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk the inventory grid and export every artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, *opts)
		},
	}

	f := cmd.Flags()
	f.Int("min-rarity", 4, "Skip artifacts below this rarity")
	f.Int("min-level", 0, "Skip artifacts below this level")
	f.Bool("fast", false, "Shorter delays and tighter adaptive delay bounds")
	f.Int("base-delay", 60, "Base capture delay in milliseconds")
	f.Int("max-retries", 2, "Attempts per item before skipping it")
	f.Float64("threshold", 0.7, "Minimum recognition confidence")
	f.Int("stall-limit", 5, "Unchanged items in a row before aborting")
	f.Int("max-items", 0, "Stop after this many items (0 = inventory count)")
	f.StringSlice("formats", []string{config.FormatGOOD}, "Export formats: good, csv, clipboard, redis")
	f.String("output-dir", ".", "Directory for exported files")
	f.Bool("ignore-dup", false, "Keep scanning through repeated identical artifacts")
	f.String("window-title", "", "Game window title")
	f.String("capture", config.CaptureSnapshot, "Capture backend: snapshot or region")
	f.String("hotkey", "", "Interrupt key combination (default: right mouse button)")
	f.StringVar(&opts.envPath, "env", "", "Path to .env file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

// overridesFromFlags collects the flags the user actually set.
func overridesFromFlags(fs *pflag.FlagSet) map[string]string {
	out := map[string]string{}
	fs.Visit(func(fl *pflag.Flag) {
		key, ok := flagEnv[fl.Name]
		if !ok {
			return
		}
		v := fl.Value.String()
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			v = strings.Join(sv.GetSlice(), ",")
		}
		out[key] = v
	})
	return out
}

func machineOptions(cfg *config.Config) scanner.Options {
	return scanner.Options{
		Layout:           layout.Default(),
		Threshold:        cfg.ConfidenceThreshold,
		MaxRetries:       cfg.MaxRetries,
		StallLimit:       cfg.StallLimit,
		MinRarity:        cfg.MinRarity,
		MinLevel:         cfg.MinLevel,
		DuplicateLimit:   cfg.DuplicateLimit,
		IgnoreDuplicates: cfg.IgnoreDuplicates,
		MaxItems:         cfg.MaxItems,
		MaxCount:         config.MaxCount,
		BaseDelay:        cfg.BaseDelay,
		FastMode:         cfg.FastMode,
		ScrollDelay:      cfg.EffectiveScrollDelay(),
		SwitchTimeout:    cfg.EffectiveSwitchTimeout(),
		CaptureTimeout:   cfg.EffectiveCaptureTimeout(),
		RecognizeTimeout: cfg.RecognizeTimeout,
		Workers:          cfg.Workers,
	}
}

func newCapturer(backend string) screenshot.Capturer {
	desktop := screenshot.NewDesktop()
	if backend == config.CaptureRegion {
		return desktop
	}
	return screenshot.NewSnapshot(desktop)
}

// resident answers STOP and STATUS for the running scan.
type resident struct {
	cancel context.CancelFunc
	m      *scanner.Machine
}

func (r resident) Stop()       { r.cancel() }
func (r resident) Status() any { return r.m.Progress() }

func runScan(cmd *cobra.Command, opts scanOptions) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			EnvPathOverride: opts.envPath,
			Overrides:       overridesFromFlags(cmd.Flags()),
		},
		Verbose: opts.verbose,
	})
	if err != nil {
		return err
	}
	defer logutil.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	ctrl, err := control.Open(control.Options{WindowTitle: cfg.WindowTitle, Settle: activateSettle})
	if err != nil {
		return err
	}
	rec, err := ocr.Open(ocr.ModelConfig{
		TessdataPrefix: cfg.TessdataPrefix,
		Language:       cfg.Language,
		VocabularyPath: cfg.VocabularyPath,
		Clients:        cfg.Workers,
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	m, err := scanner.New(scanner.Deps{
		Capturer:   newCapturer(cfg.CaptureBackend),
		Controller: ctrl,
		Recognizer: rec,
		Observer:   scanner.LogObserver{},
	}, machineOptions(cfg))
	if err != nil {
		return err
	}

	srv, err := singleinstance.Claim(ctx, resident{cancel: cancel, m: m})
	if err != nil {
		return err
	}
	defer srv.Close()

	if err := hotkey.ListenInterrupt(ctx, cfg.InterruptHotkey, cancel); err != nil {
		logutil.Warn(logutil.Fields{"error": err}, "scan: interrupt gesture unavailable, use Ctrl+C or 'scanner stop'")
	}

	sinks, err := export.Build(ctx, cfg.Formats, cfg)
	if err != nil {
		return err
	}
	defer sinks.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Scanning. Right-click, press the interrupt key or run 'scanner stop' to end early.")
	report, err := session.Execute(ctx, session.Options{
		Machine:  m,
		Sinks:    sinks,
		OnReport: session.SummaryTarget{Writer: out}.OnReport,
	})
	reportExport(cmd.ErrOrStderr(), report, err)
	return nil
}

// reportExport prints the export result. A failed or empty export is part of
// the run's outcome, not a command failure.
func reportExport(w io.Writer, report scanner.Report, err error) {
	switch {
	case errors.Is(err, session.ErrNothingToExport):
		fmt.Fprintln(w, "Nothing to export.")
	case err != nil:
		fmt.Fprintf(w, "Export failed: %v\n", err)
	default:
		fmt.Fprintf(w, "Exported %d records (session %s).\n", len(report.Records), report.SessionID)
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running scan; its records are still exported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := singleinstance.NewClient().Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stop requested.")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running scan's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p scanner.Progress
			if err := singleinstance.NewClient().Status(cmd.Context(), &p); err != nil {
				return err
			}
			return printProgress(cmd.OutOrStdout(), p, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print progress as JSON")
	return cmd
}

func printProgress(w io.Writer, p scanner.Progress, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	total := strconv.Itoa(p.Total)
	if p.Total == 0 {
		total = "?"
	}
	_, err := fmt.Fprintf(w, "Session %s: %s, %d/%s processed (accepted %d, skipped %d, filtered %d)\n",
		p.SessionID, p.State, p.Processed, total, p.Accepted, p.Skipped, p.Filtered)
	return err
}
