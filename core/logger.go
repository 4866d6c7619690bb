package core

// Logger is implemented by any logging service the portal reports through.
// Implementations may inspect trailing args for context values they know
// how to attach (e.g. the session Account for error reporting).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
