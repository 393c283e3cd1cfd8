// Package logx is a small leveled logger with typed fields.
package logx

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "NONE"
}

// ParseLevel maps a config value onto a Level. Unknown values give LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	}
	return LevelInfo
}

// Logger is the logging surface used throughout inkpdf.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is a key/value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field        { return Field{key, value} }
func Int(key string, value int) Field       { return Field{key, value} }
func Float(key string, value float64) Field { return Field{key, value} }
func Bool(key string, value bool) Field     { return Field{key, value} }
func Err(err error) Field                   { return Field{"error", err} }

type stdLogger struct {
	mu     *sync.Mutex
	level  Level
	out    *log.Logger
	fields []Field
}

// New returns a Logger writing lines at or above level to w.
func New(w io.Writer, prefix string, level Level) Logger {
	return &stdLogger{
		mu:    &sync.Mutex{},
		level: level,
		out:   log.New(w, prefix, log.LstdFlags),
	}
}

func (l *stdLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *stdLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *stdLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *stdLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *stdLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &stdLogger{mu: l.mu, level: l.level, out: l.out, fields: merged}
}

func (l *stdLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Print(b.String())
}

type nop struct{}

func (nop) Debug(string, ...Field) {}
func (nop) Info(string, ...Field)  {}
func (nop) Warn(string, ...Field)  {}
func (nop) Error(string, ...Field) {}
func (nop) With(...Field) Logger   { return nop{} }

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }
