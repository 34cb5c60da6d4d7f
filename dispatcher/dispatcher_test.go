package dispatcher

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/client"
	"github.com/torctl/ctrlevent/control"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/internal/testfakes"
	"github.com/torctl/ctrlevent/registry"
)

func newTestDispatcher(t *testing.T, conns *testfakes.ConnRegistry, ml api.Mainloop) (*Dispatcher, *registry.Registry) {
	t.Helper()
	reg := registry.New(conns, nil, nil, nil)
	return New(reg, conns, ml, nil, control.NewMetricsRegistry()), reg
}

func TestPublishDropsWhenNobodyInterested(t *testing.T) {
	a := client.New()
	conns := testfakes.NewConnRegistry(a)
	d, _ := newTestDispatcher(t, conns, nil)

	d.Publish(context.Background(), events.Circ, []byte("650 CIRC\r\n"))
	d.Flush(context.Background(), false)

	if got := a.Outbound().String(); got != "" {
		t.Fatalf("expected nothing delivered, got %q", got)
	}
}

func TestPublishAndFlushDeliversToInterestedClients(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit())
	b := client.New()
	conns := testfakes.NewConnRegistry(a, b)
	d, reg := newTestDispatcher(t, conns, nil)
	reg.RecomputeGlobalMask()

	d.Publish(context.Background(), events.Circ, []byte("650 CIRC LAUNCHED\r\n"))
	d.Flush(context.Background(), false)

	if got, want := a.Outbound().String(), "650 CIRC LAUNCHED\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := b.Outbound().String(); got != "" {
		t.Fatalf("non-subscribed client must receive nothing, got %q", got)
	}
}

func TestPublishDiscardsWhenReentrant(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit())
	conns := testfakes.NewConnRegistry(a)
	d, reg := newTestDispatcher(t, conns, nil)
	reg.RecomputeGlobalMask()

	ctx := markReentrant(context.Background())
	d.Publish(ctx, events.Circ, []byte("650 CIRC LAUNCHED\r\n"))
	d.Flush(context.Background(), false)

	if got := a.Outbound().String(); got != "" {
		t.Fatalf("reentrant publish must be discarded, got %q", got)
	}
}

func TestForceFlushRequestsClientFlush(t *testing.T) {
	a := client.New()
	conns := testfakes.NewConnRegistry(a)
	d, _ := newTestDispatcher(t, conns, nil)

	var gotCtx context.Context
	a.OnFlushRequested = func(ctx context.Context) { gotCtx = ctx }

	d.Flush(context.Background(), true)

	if gotCtx == nil {
		t.Fatal("expected RequestFlush to be called")
	}
	if !isReentrant(gotCtx) {
		t.Fatal("expected the force-flush context to be marked reentrant")
	}
}

func TestFreeAllStopsFurtherDelivery(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit())
	conns := testfakes.NewConnRegistry(a)
	d, reg := newTestDispatcher(t, conns, nil)
	reg.RecomputeGlobalMask()

	d.FreeAll()
	d.Publish(context.Background(), events.Circ, []byte("650 CIRC LAUNCHED\r\n"))
	d.Flush(context.Background(), false)

	if got := a.Outbound().String(); got != "" {
		t.Fatalf("expected no delivery after FreeAll, got %q", got)
	}
}

func TestFlushAfterFreeAllDoesNotPanic(t *testing.T) {
	conns := testfakes.NewConnRegistry()
	d, _ := newTestDispatcher(t, conns, nil)
	d.FreeAll()
	d.Flush(context.Background(), true)
}

func TestFlushDrainsLogSinkBeforeReentryGuardEngages(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Err.Bit())
	conns := testfakes.NewConnRegistry(a)
	reg := registry.New(conns, nil, nil, nil)
	reg.RecomputeGlobalMask()

	sink := testfakes.NewLogSink()
	d := New(reg, conns, nil, sink, control.NewMetricsRegistry())

	sink.SetSeverityRange(events.SeverityErr, events.SeverityErr, func(ctx context.Context, sev events.Severity, msg string) {
		if isReentrant(ctx) {
			t.Fatal("DrainPending must run with an unmarked context")
		}
		d.Publish(ctx, events.Err, []byte("650 ERR "+msg+"\r\n"))
	})
	sink.Buffer(events.SeverityErr, "disk full")

	d.Flush(context.Background(), false)

	if got, want := a.Outbound().String(), "650 ERR disk full\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNonMainThreadPublishDoesNotSchedule(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit())
	conns := testfakes.NewConnRegistry(a)
	ml := testfakes.NewMainloop()
	d, reg := newTestDispatcher(t, conns, ml)
	reg.RecomputeGlobalMask()

	ml.SetOnMainloopThread(false)
	d.Publish(context.Background(), events.Circ, []byte("E1"))
	if ml.Activations() != 0 {
		t.Fatal("a producer off the mainloop thread must not schedule a flush")
	}
	if got := a.Outbound().String(); got != "" {
		t.Fatalf("nothing should be delivered yet, got %q", got)
	}

	// The next main-thread publish schedules the flush, which drains
	// both events in enqueue order.
	ml.SetOnMainloopThread(true)
	d.Publish(context.Background(), events.Circ, []byte("E2"))
	if ml.Activations() != 1 {
		t.Fatalf("expected exactly one activation, got %d", ml.Activations())
	}
	if got := a.Outbound().String(); got != "E1E2" {
		t.Fatalf("got %q, want E1E2", got)
	}
}

func TestFlushPreservesEnqueueOrder(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit() | events.Stream.Bit())
	b := client.New()
	b.SetEventMask(events.Circ.Bit())
	conns := testfakes.NewConnRegistry(a, b)
	d, reg := newTestDispatcher(t, conns, nil)
	reg.RecomputeGlobalMask()

	d.Publish(context.Background(), events.Circ, []byte("E1"))
	d.Publish(context.Background(), events.Stream, []byte("E2"))
	d.Publish(context.Background(), events.Circ, []byte("E3"))
	d.Flush(context.Background(), false)

	if got := a.Outbound().String(); got != "E1E2E3" {
		t.Fatalf("subscriber to both codes got %q, want enqueue order E1E2E3", got)
	}
	if got := b.Outbound().String(); got != "E1E3" {
		t.Fatalf("CIRC-only subscriber got %q, want its subset in enqueue order", got)
	}
}

// TestConcurrentPublishFlushRace hammers Publish from many producer
// goroutines while a single dedicated goroutine calls Flush, matching
// the intended deployment where only the mainloop goroutine ever calls
// Flush. It checks only that nothing panics or deadlocks and every
// published line is eventually delivered exactly once.
func TestConcurrentPublishFlushRace(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.Circ.Bit())
	conns := testfakes.NewConnRegistry(a)
	d, reg := newTestDispatcher(t, conns, nil)
	reg.RecomputeGlobalMask()

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				d.Publish(context.Background(), events.Circ, []byte("650 CIRC LAUNCHED\r\n"))
				runtime.Gosched()
			}
		}()
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
				d.Flush(context.Background(), false)
				runtime.Gosched()
			}
		}
	}()

	wg.Wait()
	close(done)
	<-stopped
	d.Flush(context.Background(), false)

	got := a.Outbound().String()
	want := producers * perProducer
	count := 0
	for i := 0; i+len("650 CIRC LAUNCHED\r\n") <= len(got); i += len("650 CIRC LAUNCHED\r\n") {
		count++
	}
	if count != want {
		t.Fatalf("expected %d delivered lines, counted %d (buffer len %d)", want, count, len(got))
	}
}
