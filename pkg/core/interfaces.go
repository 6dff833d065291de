package core

// Logger interface for tracer logging. *log.Logger from charmbracelet/log
// satisfies it, and tests pass a no-op.
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}
