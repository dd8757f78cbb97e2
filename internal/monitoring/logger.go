// Package monitoring holds the runner's diagnostic log hook.
package monitoring

import "log"

// Printf is the signature shared by log.Printf and test recorders.
type Printf func(format string, v ...interface{})

// Logf receives progress and degraded-hardware messages from the task,
// persistence and serial packages. It writes through the standard logger
// until SetLogger swaps it.
var Logf Printf = log.Printf

// SetLogger routes diagnostics to f. A nil f silences them, which keeps
// test output free of per-trial chatter.
func SetLogger(f Printf) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}
