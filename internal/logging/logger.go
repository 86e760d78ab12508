package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LogFileName is the name of the rotating log file.
	LogFileName = "bugtrack.log"

	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
	logCompress   = true
	logDirPerm    = 0o750
)

// Options selects level and destinations of the logger.
type Options struct {
	Verbose bool
	Quiet   bool
	// Dir receives the rotating log file. Empty disables file logging.
	Dir string
	// Console overrides the console writer, mainly for tests.
	Console io.Writer
}

// Logger is a zerolog.Logger that owns its log file.
type Logger struct {
	zerolog.Logger
	file io.Closer
}

// New builds a logger writing to the console and, when possible, to a rotating
// file in opts.Dir. A log file that cannot be created is reported and skipped.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = selectOutput()
	}

	var (
		writer  io.Writer = console
		closer  io.Closer
		fileErr error
	)
	if opts.Dir != "" {
		lj, err := newFileWriter(opts.Dir)
		if err != nil {
			fileErr = err
		} else {
			closer = lj
			writer = zerolog.MultiLevelWriter(console, NewFilteringWriter(lj))
		}
	}

	zl := zerolog.New(writer).
		Level(SelectLevel(opts.Verbose, opts.Quiet)).
		Hook(SensitiveDataHook{}).
		With().Timestamp().Logger()

	return &Logger{Logger: zl, file: closer}, fileErr
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// SelectLevel maps the verbosity flags to a level.
func SelectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// selectOutput uses a console writer on a TTY without NO_COLOR, JSON otherwise.
func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

func newFileWriter(dir string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   logCompress,
	}, nil
}
