// Package monitoring holds the shared diagnostic logger for the engine's
// supporting surfaces (trace store, monitor webserver, demo feed).
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf;
// embedding hosts and tests can redirect or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
