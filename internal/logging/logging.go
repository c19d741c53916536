// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/worklog/worklog/internal/config"
)

// ErrorLogName is the diagnostic log kept next to the data files.
const ErrorLogName = "error.log"

// ParseLevel maps a config level to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup returns a logger that always appends JSON lines to
// <logDir>/error.log. It also writes human-readable output to console when
// the format is "console", or when it is "auto" and console is a terminal.
// The returned closer releases the file.
func Setup(cfg config.LoggingConfig, logDir string, console *os.File) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(filepath.Join(logDir, ErrorLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "open error log")
	}

	var w io.Writer = f
	if useConsole(cfg.Format, console) {
		w = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: console}, f)
	}
	level := ParseLevel(cfg.Level)
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), f, nil
}

func useConsole(format string, console *os.File) bool {
	switch format {
	case "console":
		return console != nil
	case "json":
		return false
	default:
		return console != nil && term.IsTerminal(int(console.Fd()))
	}
}
