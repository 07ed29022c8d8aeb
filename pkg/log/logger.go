package log

import "time"

// Logger is the structured logger every feedship component writes to.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration creates a duration field.
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d} }

// Time creates a timestamp field.
func Time(key string, t time.Time) Field { return Field{Key: key, Value: t} }

// Any creates a field holding an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Feed names the feed a line belongs to.
func Feed(name string) Field { return String("feed", name) }

// Path records a local file or directory.
func Path(p string) Field { return String("path", p) }

// RunID tags a line with the batch run it belongs to.
func RunID(id string) Field { return String("run_id", id) }
