// Package logging provides the leveled structured logger used across wmk.
package logging

import "context"

// Logger is the leveled logging contract. It mirrors go-logger's interface so
// the glog adapter is a thin wrapper.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) Logger {
	return n
}

// Module returns logger scoped to a component, e.g. "render" or "pubmed".
func Module(logger Logger, name string) Logger {
	if logger == nil {
		return NoOp()
	}
	if name == "" {
		return logger
	}
	return logger.WithFields(map[string]any{"module": name})
}
