package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ConsoleLogger writes human-readable lines through zerolog's ConsoleWriter.
type ConsoleLogger struct {
	zl zerolog.Logger
}

// NewConsoleLogger returns a logger writing to w at the named level.
// Colour is only enabled when w is a terminal. Unknown levels fall back to info.
func NewConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
	}
	return &ConsoleLogger{
		zl: zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}
}

// ParseLevel maps a level name onto a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether ParseLevel understands level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *ConsoleLogger) Debug(msg string, fields ...Field) { write(c.zl.Debug(), msg, fields) }
func (c *ConsoleLogger) Info(msg string, fields ...Field)  { write(c.zl.Info(), msg, fields) }
func (c *ConsoleLogger) Warn(msg string, fields ...Field)  { write(c.zl.Warn(), msg, fields) }
func (c *ConsoleLogger) Error(msg string, fields ...Field) { write(c.zl.Error(), msg, fields) }

func write(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			ev = ev.Str(f.Key, v)
		case int:
			ev = ev.Int(f.Key, v)
		case bool:
			ev = ev.Bool(f.Key, v)
		case time.Duration:
			ev = ev.Dur(f.Key, v)
		case time.Time:
			ev = ev.Time(f.Key, v)
		case error:
			ev = ev.AnErr(f.Key, v)
		default:
			ev = ev.Interface(f.Key, v)
		}
	}
	ev.Msg(msg)
}
