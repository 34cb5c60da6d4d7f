// Package client provides a concrete implementation of api.Client: the
// administrative-connection handle that the Interest Registry and Event
// Dispatcher observe but never construct or destroy on their own.
package client

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/events"
)

var _ api.Client = (*Handle)(nil)

// Handle is a concrete api.Client backed by an in-memory outbound buffer.
// It is safe for concurrent use: the mask and flags are guarded by a
// mutex since producers on other threads may query them indirectly via
// the registry while the mainloop thread drains Outbuf.
type Handle struct {
	id string

	mu             sync.Mutex
	mask           events.Mask
	open           bool
	markedForClose bool
	flushed        bool

	outbuf bytes.Buffer

	// OnFlushRequested, if set, is invoked by RequestFlush instead of the
	// default no-op. Tests and real I/O adapters wire this to their own
	// flush mechanism.
	OnFlushRequested func(ctx context.Context)
}

// New returns an open Handle with an empty mask and a fresh UUID identity.
func New() *Handle {
	return &Handle{id: uuid.NewString(), open: true}
}

// NewWithID returns an open Handle with the given identity, for tests that
// need deterministic IDs.
func NewWithID(id string) *Handle {
	return &Handle{id: id, open: true}
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) EventMask() events.Mask {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mask
}

func (h *Handle) SetEventMask(m events.Mask) {
	h.mu.Lock()
	h.mask = m
	h.mu.Unlock()
}

// OutBuf returns the client's append-only outbound buffer. Callers on the
// mainloop thread may safely write to and drain it; this core never reads
// from it concurrently with a write from another component.
func (h *Handle) OutBuf() io.Writer { return &h.outbuf }

// Outbound exposes the concrete *bytes.Buffer for tests and I/O adapters
// that need to drain or inspect its contents, which the narrower
// api.Client.OutBuf (io.Writer) does not expose.
func (h *Handle) Outbound() *bytes.Buffer { return &h.outbuf }

func (h *Handle) Open() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open && !h.markedForClose
}

func (h *Handle) MarkedForClose() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.markedForClose
}

// MarkForClose flags the handle so future registry/dispatcher passes skip
// it, without touching buffered data that a final flush may still need.
func (h *Handle) MarkForClose() {
	h.mu.Lock()
	h.markedForClose = true
	h.mu.Unlock()
}

func (h *Handle) Flushed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushed
}

func (h *Handle) SetFlushed(v bool) {
	h.mu.Lock()
	h.flushed = v
	h.mu.Unlock()
}

func (h *Handle) RequestFlush(ctx context.Context) {
	if h.OnFlushRequested != nil {
		h.OnFlushRequested(ctx)
	}
}
