package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	// EnvPathEnvVar names an alternative .env file when none sits next to the executable.
	EnvPathEnvVar = "ARTIFACT_SCANNER_ENV"

	// MaxCount is the inventory capacity shown in the header ("N/2100").
	MaxCount = 2100

	FormatGOOD      = "good"
	FormatCSV       = "csv"
	FormatClipboard = "clipboard"
	FormatRedis     = "redis"

	CaptureSnapshot = "snapshot"
	CaptureRegion   = "region"
)

// LoadOptions carries command-line values. Overrides is keyed by the
// environment variable name and wins over both the environment and .env.
type LoadOptions struct {
	EnvPathOverride string
	Overrides       map[string]string
}

type Config struct {
	MinRarity           int `validate:"min=1,max=5"`
	MinLevel            int `validate:"min=0,max=20"`
	FastMode            bool
	BaseDelay           time.Duration `validate:"gt=0"`
	MaxRetries          int           `validate:"min=0,max=10"`
	ConfidenceThreshold float64       `validate:"gt=0,lte=1"`
	StallLimit          int           `validate:"min=1"`
	DuplicateLimit      int           `validate:"min=0"`
	IgnoreDuplicates    bool
	MaxItems            int `validate:"min=0,max=2100"`

	ScrollDelay      time.Duration `validate:"gte=0"`
	SwitchTimeout    time.Duration `validate:"gt=0"`
	CaptureTimeout   time.Duration `validate:"gt=0"`
	RecognizeTimeout time.Duration `validate:"gt=0"`
	Workers          int           `validate:"min=0,max=64"`

	TessdataPrefix string
	Language       string `validate:"required"`
	VocabularyPath string

	WindowTitle     string `validate:"required"`
	CaptureBackend  string `validate:"oneof=snapshot region"`
	InterruptHotkey string

	OutputDir string   `validate:"required"`
	Formats   []string `validate:"min=1,dive,oneof=good csv clipboard redis"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"min=0,max=15"`
	RedisKey      string

	EnableFileLogging bool
	Verbose           bool

	// EnvPath is the .env file that was read, or "".
	EnvPath string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) command-line overrides
	// 2) process environment
	// 3) .env next to the executable, or the file named by ARTIFACT_SCANNER_ENV
	envPath := resolveEnvPath(opts)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	r := reader{overrides: opts.Overrides}
	cfg := &Config{
		MinRarity:           r.getInt("MIN_RARITY", 4),
		MinLevel:            r.getInt("MIN_LEVEL", 0),
		FastMode:            r.getBool("FAST_MODE", false),
		BaseDelay:           r.getMillis("BASE_DELAY_MS", 60*time.Millisecond),
		MaxRetries:          r.getInt("MAX_RETRIES", 2),
		ConfidenceThreshold: r.getFloat("CONFIDENCE_THRESHOLD", 0.7),
		StallLimit:          r.getInt("STALL_LIMIT", 5),
		DuplicateLimit:      r.getInt("DUPLICATE_LIMIT", 0),
		IgnoreDuplicates:    r.getBool("IGNORE_DUP", false),
		MaxItems:            r.getInt("MAX_ITEMS", 0),

		ScrollDelay:      r.getMillis("SCROLL_DELAY_MS", 50*time.Millisecond),
		SwitchTimeout:    r.getMillis("MAX_WAIT_SWITCH_MS", 600*time.Millisecond),
		CaptureTimeout:   r.getMillis("CAPTURE_TIMEOUT_MS", 2*time.Second),
		RecognizeTimeout: r.getMillis("RECOGNIZE_TIMEOUT_MS", 5*time.Second),
		Workers:          r.getInt("OCR_WORKERS", 0),

		TessdataPrefix: r.getString("TESSDATA_PREFIX", ""),
		Language:       r.getString("OCR_LANG", "chi_sim"),
		VocabularyPath: r.getString("OCR_VOCABULARY", ""),

		WindowTitle:     r.getString("WINDOW_TITLE", "原神"),
		CaptureBackend:  strings.ToLower(r.getString("CAPTURE_BACKEND", CaptureSnapshot)),
		InterruptHotkey: r.getString("INTERRUPT_HOTKEY", ""),

		OutputDir: r.getString("OUTPUT_DIR", "."),
		Formats:   r.getList("EXPORT_FORMATS", []string{FormatGOOD}),

		RedisAddr:     r.getString("REDIS_ADDRESS", ""),
		RedisPassword: r.getString("REDIS_PASSWORD", ""),
		RedisDB:       r.getInt("REDIS_DB", 0),
		RedisKey:      r.getString("REDIS_KEY", "artifacts"),

		EnableFileLogging: r.getBool("ENABLE_FILE_LOGGING", false),
		Verbose:           r.getBool("VERBOSE", false),

		EnvPath: envPath,
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(r.errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if cfg.HasFormat(FormatRedis) && strings.TrimSpace(cfg.RedisAddr) == "" {
			sl.ReportError(cfg.RedisAddr, "RedisAddr", "RedisAddr", "required_with_redis", "")
		}
	}, Config{})
	return v
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_with_redis":
		return "REDIS_ADDRESS is required when the redis export format is enabled"
	case "oneof":
		return fmt.Sprintf("%s: %v is not one of [%s]", fe.Namespace(), fe.Value(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	default:
		return fmt.Sprintf("%s: %v fails %s=%s", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
	}
}

// HasFormat reports whether the export format list contains name.
func (c *Config) HasFormat(name string) bool {
	for _, f := range c.Formats {
		if f == name {
			return true
		}
	}
	return false
}

// EffectiveScrollDelay applies fast mode to the scroll delay.
func (c *Config) EffectiveScrollDelay() time.Duration {
	if c.FastMode {
		return scaleDuration(c.ScrollDelay, 0.7)
	}
	return c.ScrollDelay
}

// EffectiveSwitchTimeout applies fast mode to the item switch wait.
func (c *Config) EffectiveSwitchTimeout() time.Duration {
	if c.FastMode {
		return scaleDuration(c.SwitchTimeout, 0.8)
	}
	return c.SwitchTimeout
}

// EffectiveCaptureTimeout applies fast mode to the capture wait.
func (c *Config) EffectiveCaptureTimeout() time.Duration {
	if c.FastMode {
		return scaleDuration(c.CaptureTimeout, 0.8)
	}
	return c.CaptureTimeout
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(math.Round(float64(d) * f))
}

func resolveEnvPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.EnvPathOverride); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// reader resolves one key at a time and collects malformed values.
type reader struct {
	overrides map[string]string
	errs      []string
}

func (r *reader) lookup(key string) (string, bool) {
	if v, ok := r.overrides[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, true
	}
	return "", false
}

func (r *reader) getString(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *reader) getInt(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) getFloat(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a number", key, v))
		return def
	}
	return f
}

func (r *reader) getBool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
	return def
}

func (r *reader) getMillis(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a millisecond count", key, v))
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func (r *reader) getList(key string, def []string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(item)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
