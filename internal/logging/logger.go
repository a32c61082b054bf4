// Package logging provides the structured leveled logger shared by the CLI
// and the tool runner.
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger is the structured logging surface used across the tool. The error
// variant carries the failure separately from the message so entries stay
// grep-able.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Discard is a logger that drops every entry.
type Discard struct{}

func (Discard) Debug(context.Context, string, ...Field)        {}
func (Discard) Info(context.Context, string, ...Field)         {}
func (Discard) Warn(context.Context, string, ...Field)         {}
func (Discard) Error(context.Context, string, error, ...Field) {}
func (Discard) WithFields(...Field) Logger                     { return Discard{} }

// TextLogger writes timestamped entries to a writer, one line per entry.
// Run IDs stored in the context are appended as a field when present.
type TextLogger struct {
	bound    []Field
	minLevel Level
	out      *log.Logger
}

// NewTextLogger creates a logger that writes entries at or above minLevel.
// A nil writer discards everything.
func NewTextLogger(minLevel Level, writer io.Writer) *TextLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &TextLogger{
		minLevel: minLevel,
		out:      log.New(writer, "", 0), // entries carry their own timestamp
	}
}

func (l *TextLogger) emit(ctx context.Context, level Level, msg string, err error, fields []Field) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	all := append(append([]Field(nil), l.bound...), fields...)
	if runID := runIDFrom(ctx); runID != "" {
		all = append(all, F("run_id", runID))
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "[%s] [%s] %s", time.Now().Format(time.RFC3339), level, msg)
	if err != nil {
		fmt.Fprintf(&builder, " error=%q", err.Error())
	}
	for _, f := range all {
		fmt.Fprintf(&builder, " %s=%v", f.Key, f.Value)
	}
	l.out.Println(builder.String())
}

func (l *TextLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelDebug, msg, nil, fields)
}

func (l *TextLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelInfo, msg, nil, fields)
}

func (l *TextLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelWarn, msg, nil, fields)
}

func (l *TextLogger) Error(ctx context.Context, msg string, err error, fields ...Field) {
	l.emit(ctx, LevelError, msg, err, fields)
}

func (l *TextLogger) WithFields(fields ...Field) Logger {
	return &TextLogger{
		bound:    append(append([]Field(nil), l.bound...), fields...),
		minLevel: l.minLevel,
		out:      l.out,
	}
}

// runIDKey is the context key for run correlation IDs.
type runIDKey struct{}

// WithRunID stores a run correlation ID in the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func runIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// NewRunID creates a run correlation ID. One ID covers a whole CLI
// invocation so log lines from different files can be grouped.
func NewRunID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
