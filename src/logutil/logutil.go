package logutil

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "artifact_scanner.log"
	maxSizeMB      = 10
	maxBackups     = 3
	maxAgeDays     = 7
)

type Fields = logrus.Fields

type Options struct {
	EnableFileLogging bool
	Verbose           bool
	// FilePath overrides DefaultLogFile.
	FilePath string
	// Output replaces stderr; tests use it to capture events.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = newLogger(Options{})
	file   *lumberjack.Logger
)

// Setup configures the shared logger. It may be called again to reconfigure,
// for example after flags are parsed.
func Setup(opts Options) *logrus.Logger {
	l := newLogger(opts)

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	if opts.EnableFileLogging {
		name := opts.FilePath
		if name == "" {
			name = DefaultLogFile
		}
		file = &lumberjack.Logger{
			Filename:   name,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			LocalTime:  true,
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(l.Out, file))
	}
	logger = l
	return l
}

func newLogger(opts Options) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		l.SetLevel(logrus.DebugLevel)
		l.SetReportCaller(true)
	}
	l.SetFormatter(&formatter.Formatter{
		NoColors:        true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	return l
}

// Logger returns the shared logger.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func Debug(fields Fields, msg string) { Logger().WithFields(orEmpty(fields)).Debug(msg) }

func Info(fields Fields, msg string) { Logger().WithFields(orEmpty(fields)).Info(msg) }

func Warn(fields Fields, msg string) { Logger().WithFields(orEmpty(fields)).Warn(msg) }

func Error(fields Fields, msg string) { Logger().WithFields(orEmpty(fields)).Error(msg) }

func orEmpty(f Fields) Fields {
	if f == nil {
		return Fields{}
	}
	return f
}

// RedactAddr masks the password of a URL-style address so it can be logged.
// Plain host:port values are returned unchanged.
func RedactAddr(addr string) string {
	u, err := url.Parse(addr)
	if err != nil || u.User == nil {
		return addr
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
