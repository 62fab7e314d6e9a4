package core

// Logger is the logging contract used across the app. Implementations may
// ship entries to an error-tracking backend in addition to stdout.
//
// args may contain an error, a map[string]interface{} of extra context
// and/or the acting user; implementations decide what to do with each.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
