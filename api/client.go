// Package api defines the narrow interfaces this module's components use
// to talk to their external collaborators: the connection registry, the
// mainloop, the log subsystem, the periodic-event scheduler, and the
// node table. One interface per file, shaped by what the internal
// packages need rather than by any vendor surface.
package api

import (
	"context"
	"io"

	"github.com/torctl/ctrlevent/events"
)

// Client is the opaque administrative-connection handle this core
// observes but never constructs or destroys. Its event mask is
// readable/writable by the Interest Registry; its outbound buffer is
// append-only from this core's perspective.
type Client interface {
	// ID identifies the client for debugging and dedup purposes.
	ID() string

	// EventMask returns the client's current subscription mask.
	EventMask() events.Mask

	// SetEventMask installs a new subscription mask on the client.
	SetEventMask(events.Mask)

	// OutBuf returns the client's append-only outbound byte buffer.
	OutBuf() io.Writer

	// Open reports whether the connection is open and has finished
	// authentication (i.e. is eligible to receive events).
	Open() bool

	// MarkedForClose reports whether the connection is being torn down
	// and should be excluded from delivery.
	MarkedForClose() bool

	// RequestFlush asks the I/O layer to flush OutBuf to the network
	// immediately, used by the dispatcher's force-flush path. ctx carries
	// the dispatcher's reentry marker so that a log line emitted as a
	// side effect of the flush (e.g. a write error) is recognized as
	// running on the flush's own goroutine and does not recursively
	// enqueue.
	RequestFlush(ctx context.Context)
}
