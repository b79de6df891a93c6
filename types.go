package session

import (
	"fmt"
	"net/http"
	"time"
)

// Logger is the minimal logging surface the library needs. Adapters for
// structured loggers live under adapters/.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// HTTPClient abstracts the transport used for the refresh and logout calls.
// The client must carry a cookie jar when talking to a cookie-based backend;
// the refresh credential travels only as an httpOnly cookie and is never
// read by this library.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock returns the current instant. Injectable for tests.
type Clock func() time.Time

// DefaultLogger returns the stdout fallback logger constructors use when no
// logger is injected.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
