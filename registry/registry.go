// Package registry tracks event subscription interest: per-client event
// masks, the global union mask that lets producers short-circuit work
// with a single O(1) test, and the log-severity window adjustment that
// keeps the log subsystem's callback installed at the narrowest range
// that still covers every subscribed log-level event.
package registry

import (
	"context"
	"strings"
	"sync"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/events"
)

// ArmHook runs once when an event code transitions from clear to set in
// the global mask. STREAM_BW, CIRC_BW, and BW each arm one: their actual
// effect (zeroing circuit or connection byte counters, sampling the
// cumulative totals) lives in the business-logic layer outside this
// module, so Registry only provides the slot to hang it on.
type ArmHook func()

// LogCallback is installed on the log subsystem for the currently active
// severity window. ctx carries the dispatcher's reentry marker when the
// log line is emitted synchronously from within a flush.
type LogCallback func(ctx context.Context, sev events.Severity, msg string)

// Registry is the process-singleton interest tracker. It is not safe for
// concurrent mutation: the global mask and its registry are
// single-threaded, touched only from the mainloop thread. IsInteresting
// and AnyPerSecondEnabled are read-only and may be called from any
// goroutine that only needs a point-in-time snapshot, which is why the
// global mask itself is stored behind a tiny RWMutex rather than left
// fully unsynchronized: producers on arbitrary threads call IsInteresting
// before every publish.
type Registry struct {
	conns     api.ConnIterable
	logSink   api.LogSink
	scheduler api.PeriodicScheduler
	logCB     LogCallback

	mu   sync.RWMutex
	mask events.Mask

	armMu    sync.Mutex
	armHooks map[events.Code]ArmHook

	wasAnyPerSecond bool
}

// New returns a Registry with an empty global mask. conns is the external
// connection registry the recompute walks; logSink and scheduler may be
// nil for tests that don't exercise the severity or per-second-rescan
// side effects.
func New(conns api.ConnIterable, logSink api.LogSink, scheduler api.PeriodicScheduler, logCB LogCallback) *Registry {
	return &Registry{
		conns:     conns,
		logSink:   logSink,
		scheduler: scheduler,
		logCB:     logCB,
		armHooks:  make(map[events.Code]ArmHook),
	}
}

// RegisterArmHook installs hook to run the next time code transitions
// from clear to set in the global mask. Registering a hook for a code
// that is already set does not run it retroactively.
func (r *Registry) RegisterArmHook(code events.Code, hook ArmHook) {
	r.armMu.Lock()
	defer r.armMu.Unlock()
	r.armHooks[code] = hook
}

// GlobalMask returns the current global interest mask.
func (r *Registry) GlobalMask() events.Mask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mask
}

// IsInteresting reports whether any open client currently subscribes to
// code. O(1): a single bit test against the cached global mask.
func (r *Registry) IsInteresting(code events.Code) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mask.Has(code)
}

// AnyPerSecondEnabled reports whether the global mask contains any of
// BW, CELL_STATS, CIRC_BW, CONN_BW, STREAM_BW.
func (r *Registry) AnyPerSecondEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mask.AnyPerSecond()
}

// SetClientMask stores mask on client, then recomputes the global mask.
func (r *Registry) SetClientMask(client api.Client, mask events.Mask) {
	client.SetEventMask(mask)
	r.RecomputeGlobalMask()
}

// RecomputeGlobalMask walks every open, not-marked-for-close client,
// OR's their masks into a candidate, and installs it as the new global
// mask after running the log-severity adjustment, the arming side
// effects for newly-set bits, and the per-second-rescan notification, in
// that order.
func (r *Registry) RecomputeGlobalMask() {
	var candidate events.Mask
	if r.conns != nil {
		for _, c := range r.conns.OpenClients() {
			candidate = events.Union(candidate, c.EventMask())
		}
	}

	r.mu.RLock()
	prev := r.mask
	r.mu.RUnlock()

	r.adjustLogSeverity(candidate)

	transitioned := candidate &^ prev
	if transitioned != 0 {
		r.armMu.Lock()
		hooks := make([]ArmHook, 0, len(r.armHooks))
		for code, hook := range r.armHooks {
			if transitioned.Has(code) && hook != nil {
				hooks = append(hooks, hook)
			}
		}
		r.armMu.Unlock()
		for _, hook := range hooks {
			hook()
		}
	}

	isAny := candidate.AnyPerSecond()
	if isAny != r.wasAnyPerSecond {
		r.wasAnyPerSecond = isAny
		if r.scheduler != nil {
			r.scheduler.RescanPeriodicEvents()
		}
	}

	r.mu.Lock()
	r.mask = candidate
	r.mu.Unlock()
}

// EventNames returns every registered event name, space-separated, in
// ascending code order, for the events introspection query.
func EventNames() string {
	return strings.Join(events.AllNames(), " ")
}

// Reset zeros the global mask without touching any client's own mask,
// for the module's shutdown path.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.mask = 0
	r.mu.Unlock()
	r.wasAnyPerSecond = false
}
