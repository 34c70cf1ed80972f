package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is a deliberately small, framework-agnostic logging interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// Level orders log severities; entries below a logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// ParseLevel maps a level name to a Level. Unknown names fall back to warn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	default:
		return LevelWarn
	}
}

// JSONLogger prints one JSON object per line to its writer.
// The CLI points it at stderr so log lines never mix with program output.
type JSONLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	level     Level
	component string
	fields    []Field
}

// NewJSONLogger creates a logger writing to w. component is included in every entry.
func NewJSONLogger(w io.Writer, component string, level Level) *JSONLogger {
	if w == nil {
		w = os.Stderr
	}
	return &JSONLogger{mu: &sync.Mutex{}, out: w, level: level, component: component}
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}

	m := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		m[f.Key] = fieldValue(f.Value)
	}
	for _, f := range fields {
		m[f.Key] = fieldValue(f.Value)
	}
	entry := outEntry{
		Level:     level.String(),
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	enc, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(l.out, string(enc))
}

// errors marshal to {} otherwise
func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field) { l.log(LevelInfo, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field) { l.log(LevelWarn, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields...) }

// With returns a child logger sharing the writer. A "component" field replaces
// the component name instead of being added as a regular field.
func (l *JSONLogger) With(fields ...Field) Logger {
	child := &JSONLogger{
		mu:        l.mu,
		out:       l.out,
		level:     l.level,
		component: l.component,
		fields:    append([]Field(nil), l.fields...),
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field) {}
func (NopLogger) Warn(string, ...Field) {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
