// Package logging provides a small structured-logging abstraction: a
// Logger interface plus a zap-backed implementation.
package logging

// Logger is the structured logging port used throughout this service.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	With(fields ...any) Logger
	Sync() error
}
