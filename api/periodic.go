package api

// PeriodicScheduler is asked to rescan its schedule whenever the
// "any per-second event enabled" predicate flips value, so it can start or
// stop the once-a-second tasks that only matter while someone is
// subscribed to BW/CELL_STATS/CIRC_BW/CONN_BW/STREAM_BW.
type PeriodicScheduler interface {
	RescanPeriodicEvents()
}

// NodeTable maps an identity digest to a nickname, used by the OR-Connection
// formatter's display-name precedence (known directory node wins over raw
// identity or address:port).
type NodeTable interface {
	// VerboseNickname returns the "$HEXID~Nickname"-style verbose name for
	// the node with the given identity digest, and ok=false if no such
	// node is known.
	VerboseNickname(identityDigest [20]byte) (name string, ok bool)
}
