package logger

import "context"

// NopLogger discards everything. Used as a default in tests and when a
// component is constructed without a logger.
type NopLogger struct{}

// NewNop returns a logger that discards all output.
func NewNop() Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

func (n NopLogger) With(...any) Logger                 { return n }
func (n NopLogger) WithContext(context.Context) Logger { return n }
