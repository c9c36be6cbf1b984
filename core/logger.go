package core

// Logger is implemented by any logging service.
// args may carry an error, a map of extras and the identity of the caller (see Caller).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Caller identifies the account on whose behalf something is logged.
type Caller struct {
	ID    int
	Name  string
	Email string
}
