package api

import (
	"context"

	"github.com/torctl/ctrlevent/events"
)

// LogSink is the external log subsystem's callback-installation surface.
// The interest registry's log-severity adjustment installs a severity
// window and callback on it whenever the global event mask changes.
//
// Both methods take a context so that the dispatcher's reentry guard
// can be threaded through: a log line's ctx tells the callback
// whether it is running on the flush goroutine's own call stack (in
// which case a recursive publish must be discarded) or on some other
// producer's stack (in which case it should enqueue normally).
type LogSink interface {
	// SetSeverityRange installs cb to run for every log line whose
	// severity falls within [min, max] inclusive. Installing a new range
	// replaces any previously installed one.
	SetSeverityRange(min, max events.Severity, cb func(ctx context.Context, sev events.Severity, msg string))

	// DrainPending flushes any log lines the subsystem buffered before a
	// callback was installed or while a flush was in progress, so they
	// reach the dispatcher's queue ahead of newer events. Called as step
	// 1 of the flush protocol, with the flush's own (not yet
	// reentry-marked) context, so the drained lines enqueue normally
	// instead of being discarded as reentrant.
	DrainPending(ctx context.Context)
}
