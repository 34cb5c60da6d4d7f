package api

// ConnIterable is the external connection registry: an iterable collection
// of currently open administrative connections. The registry and
// dispatcher use it to walk clients without owning their lifecycle.
type ConnIterable interface {
	// OpenClients returns a snapshot of open, not-marked-for-close
	// clients. Implementations should return a stable snapshot so that
	// callers iterating it are unaffected by concurrent connect/disconnect.
	OpenClients() []Client
}
