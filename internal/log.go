package internal

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes human-readable lines to stderr and, when a path is given,
// JSON lines to a log file.
type Logger struct {
	zerolog.Logger
	f *os.File
}

func NewLogger(path string, verbose bool) (*Logger, error) {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var f *os.File
	if path != "" {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		w = zerolog.MultiLevelWriter(w, f)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	l := newLogger(w, level)
	l.f = f
	return l, nil
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{Logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

func (l *Logger) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
