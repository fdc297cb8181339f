package runtimeinit

import (
	"fmt"

	"artifact-scanner/src/config"
	"artifact-scanner/src/control"
	"artifact-scanner/src/logutil"
)

type Options struct {
	LoadOptions config.LoadOptions
	// Verbose forces debug logging regardless of configuration.
	Verbose bool
	// LogFile overrides the rotating log file path.
	LogFile string
	// SkipDPI leaves the process DPI mode alone. Commands that never
	// touch the screen set it.
	SkipDPI bool
}

// Bootstrap loads configuration and prepares process-wide state in the order
// every command needs: config, logging, DPI awareness.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logutil.Setup(logutil.Options{
		EnableFileLogging: cfg.EnableFileLogging,
		Verbose:           cfg.Verbose || opts.Verbose,
		FilePath:          opts.LogFile,
	})
	logutil.Debug(logutil.Fields{
		"env":      cfg.EnvPath,
		"formats":  cfg.Formats,
		"capture":  cfg.CaptureBackend,
		"redis":    logutil.RedactAddr(cfg.RedisAddr),
		"workers":  cfg.Workers,
		"fast":     cfg.FastMode,
		"maxItems": cfg.MaxItems,
	}, "config loaded")

	if !opts.SkipDPI {
		// Window rectangles and capture coordinates must agree in physical pixels.
		control.EnableDPIAwareness()
	}
	return cfg, nil
}
