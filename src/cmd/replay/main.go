package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"artifact-scanner/src/artifact"
	"artifact-scanner/src/config"
	"artifact-scanner/src/geometry"
	"artifact-scanner/src/layout"
	"artifact-scanner/src/logutil"
	"artifact-scanner/src/ocr"
	"artifact-scanner/src/runtimeinit"
	"artifact-scanner/src/scanner"
	"artifact-scanner/src/screenshot"
	"artifact-scanner/src/worker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type replayOptions struct {
	frames     string
	jsonOutput bool
	envPath    string
	verbose    bool
}

// frameResult is one frame's outcome. Exactly one of Record and Error is set.
type frameResult struct {
	Frame  string             `json:"frame"`
	Record *artifact.Artifact `json:"record,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func main() {
	if err := runWithArgs(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"replay"}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	opts := &replayOptions{}
	cmd := &cobra.Command{
		Use:           "replay",
		Short:         "Recognize and parse saved inventory frames",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, *opts)
		},
	}
	cmd.Flags().StringVar(&opts.frames, "frames", "", "Directory of 1920x1080 PNG or BMP frames")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to .env file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	_ = cmd.MarkFlagRequired("frames")
	return cmd
}

func runReplay(cmd *cobra.Command, opts replayOptions) error {
	cfg, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: opts.envPath},
		Verbose:     opts.verbose,
		SkipDPI:     true,
	})
	if err != nil {
		return err
	}
	defer logutil.Close()

	paths, err := listFrames(opts.frames)
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

	results := replay(cmd.Context(), paths, rec, replaySettings{
		Layout:           layout.Default(),
		Threshold:        cfg.ConfidenceThreshold,
		Workers:          cfg.Workers,
		RecognizeTimeout: cfg.RecognizeTimeout,
	})
	return render(cmd.OutOrStdout(), results, opts.jsonOutput)
}

// listFrames returns the PNG and BMP files of dir in name order.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".bmp":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PNG or BMP frames in %s", dir)
	}
	slices.Sort(paths)
	return paths, nil
}

type replaySettings struct {
	Layout           layout.Layout
	Threshold        float64
	Workers          int
	RecognizeTimeout time.Duration
}

// replay reads each frame as if it were the screen with the game window at
// the origin. A frame that fails does not stop the others.
func replay(ctx context.Context, paths []string, rec ocr.Recognizer, s replaySettings) []frameResult {
	pool := worker.New(s.Workers, rec)
	defer pool.Close()
	parser := artifact.Parser{Threshold: s.Threshold}

	results := make([]frameResult, 0, len(paths))
	for _, p := range paths {
		res := frameResult{Frame: filepath.Base(p)}
		a, err := replayFrame(ctx, p, pool, parser, s)
		if err != nil {
			res.Error = err.Error()
			logutil.Warn(logutil.Fields{"frame": res.Frame, "error": err}, "replay: frame failed")
		} else {
			res.Record = &a
		}
		results = append(results, res)
	}
	return results
}

func replayFrame(ctx context.Context, path string, pool *worker.Pool, parser artifact.Parser, s replaySettings) (artifact.Artifact, error) {
	still, err := screenshot.LoadStill(path, geometry.Pt(0, 0))
	if err != nil {
		return artifact.Artifact{}, err
	}
	lay, err := s.Layout.Resolve(still.Bounds())
	if err != nil {
		return artifact.Artifact{}, err
	}
	r := &scanner.Reader{
		Capturer:         still,
		Pool:             pool,
		Layout:           lay,
		RecognizeTimeout: s.RecognizeTimeout,
	}
	rd, err := r.Read(ctx)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return parser.Parse(rd)
}

func render(w io.Writer, results []frameResult, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\terror: %s\n", r.Frame, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", r.Frame, r.Record)
	}
	return nil
}
