package core

// Logger is any service that can log application events.
// args may hold errors, maps of extra data and the acting user (services decide what to do with them).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
