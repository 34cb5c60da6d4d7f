// Package testfakes provides lightweight test doubles for this module's
// external-collaborator interfaces: api.ConnIterable, api.Mainloop,
// api.LogSink, api.PeriodicScheduler, and api.NodeTable. Hand-written
// fakes, no mocking framework.
package testfakes

import (
	"context"
	"sync"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/client"
	"github.com/torctl/ctrlevent/events"
)

// ConnRegistry is a fake api.ConnIterable backed by a slice of
// *client.Handle the test adds directly.
type ConnRegistry struct {
	mu      sync.Mutex
	clients []*client.Handle
}

func NewConnRegistry(clients ...*client.Handle) *ConnRegistry {
	return &ConnRegistry{clients: clients}
}

func (c *ConnRegistry) Add(h *client.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = append(c.clients, h)
}

// OpenClients implements api.ConnIterable.
func (c *ConnRegistry) OpenClients() []api.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.Client, 0, len(c.clients))
	for _, h := range c.clients {
		if h.Open() {
			out = append(out, h)
		}
	}
	return out
}

// Mainloop is a fake api.Mainloop that runs flush handles synchronously
// on whatever goroutine calls Activate. OnMainloopThread defaults to
// true and can be toggled per-test to simulate a producer goroutine
// that is not the mainloop's own.
type Mainloop struct {
	mu          sync.Mutex
	onMainGoR   bool
	activations int
}

func NewMainloop() *Mainloop { return &Mainloop{onMainGoR: true} }

func (m *Mainloop) OnMainloopThread() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onMainGoR
}

func (m *Mainloop) SetOnMainloopThread(v bool) {
	m.mu.Lock()
	m.onMainGoR = v
	m.mu.Unlock()
}

func (m *Mainloop) NewFlushHandle(fn func(force bool)) api.FlushHandle {
	return &flushHandle{ml: m, fn: fn}
}

func (m *Mainloop) Activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations
}

type flushHandle struct {
	ml       *Mainloop
	fn       func(force bool)
	released bool
}

func (h *flushHandle) Activate(force bool) {
	if h.released {
		return
	}
	h.ml.mu.Lock()
	h.ml.activations++
	h.ml.mu.Unlock()
	h.fn(force)
}

func (h *flushHandle) Release() { h.released = true }

// LogSink is a fake api.LogSink. SetSeverityRange just records the
// window and callback; tests invoke Emit to simulate a log line
// occurring within that window, and Buffer to queue lines that
// DrainPending (step 1 of the flush protocol) replays to the callback.
type LogSink struct {
	mu       sync.Mutex
	min, max events.Severity
	cb       func(ctx context.Context, sev events.Severity, msg string)
	buffered []pendingLine
}

type pendingLine struct {
	sev events.Severity
	msg string
}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) SetSeverityRange(min, max events.Severity, cb func(ctx context.Context, sev events.Severity, msg string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.min, s.max, s.cb = min, max, cb
}

func (s *LogSink) Range() (events.Severity, events.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min, s.max
}

// Emit simulates a real log line: if sev falls within the installed
// window, the callback runs synchronously with ctx, exactly as the real
// log subsystem would call back into the registry's relay.
func (s *LogSink) Emit(ctx context.Context, sev events.Severity, msg string) {
	s.mu.Lock()
	cb, min, max := s.cb, s.min, s.max
	s.mu.Unlock()
	if cb != nil && sev >= min && sev <= max {
		cb(ctx, sev, msg)
	}
}

// Buffer queues a line as if it arrived before DrainPending ran.
func (s *LogSink) Buffer(sev events.Severity, msg string) {
	s.mu.Lock()
	s.buffered = append(s.buffered, pendingLine{sev, msg})
	s.mu.Unlock()
}

// DrainPending implements api.LogSink.
func (s *LogSink) DrainPending(ctx context.Context) {
	s.mu.Lock()
	lines := s.buffered
	s.buffered = nil
	cb := s.cb
	s.mu.Unlock()
	for _, l := range lines {
		if cb != nil {
			cb(ctx, l.sev, l.msg)
		}
	}
}

// Scheduler is a fake api.PeriodicScheduler that counts rescans.
type Scheduler struct {
	mu      sync.Mutex
	rescans int
}

func NewScheduler() *Scheduler { return &Scheduler{} }

func (s *Scheduler) RescanPeriodicEvents() {
	s.mu.Lock()
	s.rescans++
	s.mu.Unlock()
}

func (s *Scheduler) Rescans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rescans
}

// NodeTable is a fake api.NodeTable backed by a map.
type NodeTable struct {
	names map[[20]byte]string
}

func NewNodeTable() *NodeTable { return &NodeTable{names: make(map[[20]byte]string)} }

func (n *NodeTable) Set(digest [20]byte, name string) { n.names[digest] = name }

func (n *NodeTable) VerboseNickname(digest [20]byte) (string, bool) {
	name, ok := n.names[digest]
	return name, ok
}
