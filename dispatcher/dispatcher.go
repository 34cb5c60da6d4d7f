// Package dispatcher provides a thread-safe event enqueue paired with a
// mainloop-scheduled, single-consumer batched flush. It decouples event
// producers, which may run on any goroutine deep inside unrelated
// router machinery, from event consumers, whose outbound buffers live
// on the single mainloop goroutine.
package dispatcher

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/control"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/registry"
)

// queuedEvent pairs a wire-formatted payload with the code it was
// admitted under, so Flush can test it against each client's mask.
type queuedEvent struct {
	code    events.Code
	payload []byte
}

// Dispatcher holds the pending-event queue and the mainloop flush handle.
// One mutex protects the queue and the flush-scheduled flag; everything
// else (the reentry marker) rides the caller's context.
type Dispatcher struct {
	registry *registry.Registry
	conns    api.ConnIterable
	mainloop api.Mainloop
	logSink  api.LogSink
	metrics  *control.MetricsRegistry

	mu             sync.Mutex
	q              *queue.Queue
	flushScheduled bool

	handle api.FlushHandle

	enqueued  uint64
	discarded uint64
	flushes   uint64
}

// New constructs a Dispatcher wired to registry for interest tests and
// conns for the client snapshot taken at flush time. If mainloop is
// non-nil, a flush handle is registered immediately; tests that drive
// Flush directly may pass a nil mainloop. logSink may be nil for tests
// that don't exercise step 1 of the flush protocol.
func New(reg *registry.Registry, conns api.ConnIterable, mainloop api.Mainloop, logSink api.LogSink, metrics *control.MetricsRegistry) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		conns:    conns,
		mainloop: mainloop,
		logSink:  logSink,
		metrics:  metrics,
		q:        queue.New(),
	}
	if mainloop != nil {
		d.handle = mainloop.NewFlushHandle(func(force bool) {
			d.Flush(context.Background(), force)
		})
	}
	return d
}

// reentryKey marks a context as running inside Flush: Flush attaches it to
// the context it hands to Client.RequestFlush during the force-flush step,
// so a Publish made with that context from the same call stack is
// recognized and discarded instead of re-entering client delivery. This breaks the feedback loop where delivering a log-level
// event would log, which would enqueue, recursively.
type reentryKey struct{}

func markReentrant(ctx context.Context) context.Context {
	return context.WithValue(ctx, reentryKey{}, true)
}

func isReentrant(ctx context.Context) bool {
	v, _ := ctx.Value(reentryKey{}).(bool)
	return v
}

// Publish enqueues payload under code, taking ownership of it. It is a
// no-op (payload is simply dropped for the garbage collector) if nobody
// is interested, if ctx carries the reentry marker Flush attaches for its
// force-flush callbacks, or after FreeAll has torn the dispatcher down.
//
// Only a call on the mainloop thread latches the flush-scheduled flag
// and activates the handle. Producers on other goroutines enqueue but
// never schedule; a pre-scheduled flush, or the next mainloop-thread
// publish, drains their work.
func (d *Dispatcher) Publish(ctx context.Context, code events.Code, payload []byte) {
	if d.registry != nil && !d.registry.IsInteresting(code) {
		d.mu.Lock()
		d.discarded++
		d.mu.Unlock()
		return
	}
	if isReentrant(ctx) {
		d.mu.Lock()
		d.discarded++
		d.mu.Unlock()
		return
	}

	var handle api.FlushHandle
	activate := false
	d.mu.Lock()
	if d.q != nil {
		d.q.Add(queuedEvent{code: code, payload: payload})
		d.enqueued++
		if !d.flushScheduled && d.onMainloopThread() {
			d.flushScheduled = true
			activate = true
			handle = d.handle
		}
	} else {
		d.discarded++
	}
	d.mu.Unlock()

	if activate && handle != nil {
		handle.Activate(false)
	}
}

// onMainloopThread reports whether flush-scheduling should latch from
// this call. Without a mainloop (nil, e.g. in unit tests driving Flush
// directly) every publish is treated as mainloop-originated so a single
// goroutine's enqueue-then-flush sequence behaves deterministically.
func (d *Dispatcher) onMainloopThread() bool {
	if d.mainloop == nil {
		return true
	}
	return d.mainloop.OnMainloopThread()
}

// Flush drains the queue once and delivers every event to every open,
// not-marked-for-close client whose mask contains its code, in enqueue
// order. It must only be called from the mainloop
// goroutine (directly, or as the callback registered with the mainloop's
// flush handle).
func (d *Dispatcher) Flush(ctx context.Context, force bool) {
	// Step 1: drain the log subsystem's own pending-callback buffer
	// first, with ctx still unmarked, so any buffered log lines enqueue
	// normally ahead of the queue swap below instead of being discarded
	// as reentrant.
	if d.logSink != nil {
		d.logSink.DrainPending(ctx)
	}

	flushCtx := markReentrant(ctx)

	d.mu.Lock()
	d.flushScheduled = false
	q := d.q
	if d.q != nil {
		d.q = queue.New()
	}
	d.flushes++
	d.mu.Unlock()

	if q == nil {
		// FreeAll ran before this flush fired; nothing left to deliver.
		return
	}

	var clients []api.Client
	if d.conns != nil {
		clients = d.conns.OpenClients()
	}

	for q.Length() > 0 {
		ev, _ := q.Remove().(queuedEvent)
		for _, c := range clients {
			if c.EventMask().Has(ev.code) {
				_, _ = c.OutBuf().Write(ev.payload)
			}
		}
	}

	if force {
		for _, c := range clients {
			c.RequestFlush(flushCtx)
		}
	}

	d.recordMetrics()
}

// FreeAll tears the dispatcher down: detaches and drops the queue,
// releases the mainloop handle, and makes every subsequent Publish a
// no-op. Safe to call more than once.
func (d *Dispatcher) FreeAll() {
	d.mu.Lock()
	d.q = nil
	d.flushScheduled = false
	handle := d.handle
	d.handle = nil
	d.mu.Unlock()

	if handle != nil {
		handle.Release()
	}
}

func (d *Dispatcher) recordMetrics() {
	if d.metrics == nil {
		return
	}
	d.mu.Lock()
	enq, disc, flushes := d.enqueued, d.discarded, d.flushes
	d.mu.Unlock()
	d.metrics.Set("dispatcher.enqueued", enq)
	d.metrics.Set("dispatcher.discarded", disc)
	d.metrics.Set("dispatcher.flushes", flushes)
}
