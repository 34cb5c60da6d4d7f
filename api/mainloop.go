package api

// Mainloop supports single-shot event activation: a handle that can be
// scheduled to fire once on the mainloop thread. The dispatcher uses it to
// ask for a flush without touching client buffers from a producer's stack.
type Mainloop interface {
	// NewFlushHandle registers fn to run on the mainloop thread when
	// Activate is called on the returned handle.
	NewFlushHandle(fn func(force bool)) FlushHandle

	// OnMainloopThread reports whether the calling goroutine is the
	// mainloop's own goroutine. The dispatcher's enqueue protocol only
	// sets its scheduled flag from this thread.
	OnMainloopThread() bool
}

// FlushHandle is a single-shot activation token obtained from a Mainloop.
type FlushHandle interface {
	// Activate requests that the handle's callback run on the mainloop
	// thread. Calling Activate multiple times before the callback runs
	// coalesces into a single invocation.
	Activate(force bool)

	// Release detaches the handle from the mainloop; safe to call more
	// than once.
	Release()
}
