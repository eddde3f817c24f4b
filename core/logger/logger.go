package logger

// Logger is the logging surface used across the core packages. Formatted
// variants cover the common case; Debugw attaches structured fields.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
