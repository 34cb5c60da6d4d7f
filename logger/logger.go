// Package logger defines the callback-shaped logging type this module
// passes around instead of writing to a package-global logger, plus a
// rate limiter for the severity window the interest registry installs
// on the external log subsystem.
package logger

import (
	"golang.org/x/time/rate"
)

// Logf is a printf-like logging func. Like log.Printf, the format need
// not end in a newline. Implementations must be safe for concurrent use,
// since producers on arbitrary threads may call it.
type Logf func(format string, args ...any)

// Discard throws away everything logged to it.
func Discard(string, ...any) {}

// RateLimited wraps logf so that it emits at most one line per interval,
// plus an initial burst, sharing a single token bucket across every
// call. Installed on the log-severity relay's diagnostic notice so a
// newly widened range (e.g. DEBUG..ERR while a controller is attached)
// can't flood the module's own log; the relayed events themselves are
// not rate limited.
func RateLimited(logf Logf, lim *rate.Limiter) Logf {
	if logf == nil {
		logf = Discard
	}
	return func(format string, args ...any) {
		if lim.Allow() {
			logf(format, args...)
		}
	}
}
