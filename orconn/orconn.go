// Package orconn formats OR-connection control events: it turns a
// channel status transition into the "650 ORCONN ..." wire line and,
// separately, answers the point-in-time orconn-status introspection
// query.
package orconn

import (
	"fmt"
	"strings"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/registry"
)

// Status is the live transition enum a connection reports over the
// control channel: LAUNCHED/CONNECTED/FAILED/CLOSED/NEW.
type Status int

const (
	Launched Status = iota
	Connected
	Failed
	Closed
	New
)

func (s Status) String() string {
	switch s {
	case Launched:
		return "LAUNCHED"
	case Connected:
		return "CONNECTED"
	case Failed:
		return "FAILED"
	case Closed:
		return "CLOSED"
	case New:
		return "NEW"
	default:
		return "UNKNOWN"
	}
}

// Conn is the narrow view of a channel handle the formatter needs: its
// identity digest, address:port, and the router-wide numeric ID that
// appears in every ORCONN line.
type Conn struct {
	IdentityDigest [20]byte
	Address        string
	Port           uint16
	GlobalID       uint64
}

// StatusMsg is the state-bus message an OR connection publishes on every
// lifecycle transition. The subsystem subscribes to the bus at
// initialization and turns each message into an ORCONN event line.
// Reason carries the END_OR_CONN_REASON_* constant name, or "" when the
// transition has no reason.
type StatusMsg struct {
	Conn   Conn
	Status Status
	Reason string
	NCircs int
}

var zeroDigest [20]byte

// DisplayName picks the name a connection goes by on the control
// channel: a known directory node's verbose nickname wins; failing
// that, a nonzero identity digest renders as "$" plus its upper-hex
// encoding; failing that, "address:port".
func DisplayName(nodeTable api.NodeTable, c Conn) string {
	if nodeTable != nil {
		if name, ok := nodeTable.VerboseNickname(c.IdentityDigest); ok {
			return name
		}
	}
	if c.IdentityDigest != zeroDigest {
		return "$" + strings.ToUpper(fmt.Sprintf("%x", c.IdentityDigest[:]))
	}
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// FormatStatus composes the "650 ORCONN <name> <status>[ REASON=...][
// NCIRCS=n] ID=<id>\r\n" line for a live transition. It short-circuits
// with reg.IsInteresting(ORCONN) first, returning ok=false without
// allocating anything if nobody is subscribed. reason is the already
// human-readable end-reason text (e.g. "TIMEOUT"); pass "" when no
// reason was supplied. ncircs is included only for Failed/Closed with a
// nonzero count; circuit counts are only interesting at teardown.
func FormatStatus(reg *registry.Registry, nodeTable api.NodeTable, c Conn, status Status, reason string, ncircs int) (payload []byte, ok bool) {
	if reg != nil && !reg.IsInteresting(events.OrConn) {
		return nil, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "650 ORCONN %s %s", DisplayName(nodeTable, c), status)
	if reason != "" {
		fmt.Fprintf(&b, " REASON=%s", reason)
	}
	if ncircs != 0 && (status == Failed || status == Closed) {
		fmt.Fprintf(&b, " NCIRCS=%d", ncircs)
	}
	fmt.Fprintf(&b, " ID=%d\r\n", c.GlobalID)
	return []byte(b.String()), true
}

// ConnState is a point-in-time snapshot of one connection for the
// orconn-status introspection query: whether it's fully open, and
// whether a nickname has been learned for it yet. Distinct from Status
// above, which is the live-event transition enum.
type ConnState struct {
	Conn          Conn
	Open          bool
	NicknameKnown bool
}

// classify returns the query's three-way classification for one
// connection: CONNECTED if open, else LAUNCHED if a nickname is already
// known, else NEW.
func (cs ConnState) classify() string {
	switch {
	case cs.Open:
		return "CONNECTED"
	case cs.NicknameKnown:
		return "LAUNCHED"
	default:
		return "NEW"
	}
}

// OrconnStatus answers the orconn-status introspection query: one
// "<name> <state>" line per connection, CRLF-separated.
func OrconnStatus(nodeTable api.NodeTable, conns []ConnState) string {
	lines := make([]string, 0, len(conns))
	for _, cs := range conns {
		lines = append(lines, fmt.Sprintf("%s %s", DisplayName(nodeTable, cs.Conn), cs.classify()))
	}
	return strings.Join(lines, "\r\n")
}
