package port

// Logger is the structured logger services receive. args are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	// Error is for failures the user sees as an alert or that abort an operation.
	Error(msg string, args ...any)
}
