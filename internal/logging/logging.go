// Package logging builds the application logger on top of zerolog.
// Logs go to the console, a rotating file, or both.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/naka-gawa/github-insights/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates the logger described by cfg. Console output goes to console,
// normally standard error so it never mixes with the report on standard output.
// Priority: debug > verbose > cfg.Level.
func New(cfg config.LogConfig, verbose, debug bool, console io.Writer) zerolog.Logger {
	level := ParseLevel(cfg.Level)
	if verbose {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var writers []io.Writer
	switch strings.ToLower(cfg.Mode) {
	case "file":
		writers = append(writers, newFileWriter(cfg))
	case "both":
		writers = append(writers, newConsoleWriter(console, cfg.JSON), newFileWriter(cfg))
	default:
		writers = append(writers, newConsoleWriter(console, cfg.JSON))
	}

	output := writers[0]
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}

	ctx := zerolog.New(output).Level(level).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func newConsoleWriter(out io.Writer, useJSON bool) io.Writer {
	if useJSON {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// newFileWriter returns a size-rotated log file. It falls back to standard
// error when the log directory cannot be created.
func newFileWriter(cfg config.LogConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}
}

// ParseLevel maps a level name to a zerolog level; unknown names mean warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}
