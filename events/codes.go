// Package events defines the control-channel event code table: the
// bijective mapping between small integer codes and their wire names, and
// the 64-bit Mask type used to track subscriber interest.
package events

import "strings"

// Code names one event kind. Codes are wire-stable: their textual names
// appear both in SETEVENTS requests and in outgoing "650" event lines.
type Code uint8

// Event codes, numerically stable, mirroring the control protocol's legacy
// numbering (gaps at 0x0D, 0x1C, 0x1E, 0x1F are reserved for names that were
// retired upstream; this table does not reuse them).
const (
	Circ             Code = 0x01
	Stream           Code = 0x02
	OrConn           Code = 0x03
	BW               Code = 0x04
	CircMinor        Code = 0x05
	NewDesc          Code = 0x06
	Debug            Code = 0x07
	Info             Code = 0x08
	Notice           Code = 0x09
	Warn             Code = 0x0A
	Err              Code = 0x0B
	AddrMap          Code = 0x0C
	DescChanged      Code = 0x0E
	NS               Code = 0x0F
	StatusClient     Code = 0x10
	StatusServer     Code = 0x11
	StatusGeneral    Code = 0x12
	Guard            Code = 0x13
	StreamBW         Code = 0x14
	ClientsSeen      Code = 0x15
	NewConsensus     Code = 0x16
	BuildTimeoutSet  Code = 0x17
	Signal           Code = 0x18
	ConfChanged      Code = 0x19
	ConnBW           Code = 0x1A
	CellStats        Code = 0x1B
	CircBW           Code = 0x1D
	TransportLaunch  Code = 0x20
	HSDesc           Code = 0x21
	HSDescContent    Code = 0x22
	NetworkLiveness  Code = 0x23

	// Min and Max bound the valid code range. Max must stay below 64 so
	// that a Mask bit always fits in a uint64.
	Min Code = Circ
	Max Code = NetworkLiveness
)

// nameOf and codeOf together form the bijective code<->name table. codeOf
// is derived from nameOf once in init; neither is mutated afterward.
var (
	nameOf = map[Code]string{
		Circ:            "CIRC",
		Stream:          "STREAM",
		OrConn:          "ORCONN",
		BW:              "BW",
		CircMinor:       "CIRC_MINOR",
		NewDesc:         "NEWDESC",
		Debug:           "DEBUG",
		Info:            "INFO",
		Notice:          "NOTICE",
		Warn:            "WARN",
		Err:             "ERR",
		AddrMap:         "ADDRMAP",
		DescChanged:     "DESCCHANGED",
		NS:              "NS",
		StatusClient:    "STATUS_CLIENT",
		StatusServer:    "STATUS_SERVER",
		StatusGeneral:   "STATUS_GENERAL",
		Guard:           "GUARD",
		StreamBW:        "STREAM_BW",
		ClientsSeen:     "CLIENTS_SEEN",
		NewConsensus:    "NEWCONSENSUS",
		BuildTimeoutSet: "BUILDTIMEOUT_SET",
		Signal:          "SIGNAL",
		ConfChanged:     "CONF_CHANGED",
		ConnBW:          "CONN_BW",
		CellStats:       "CELL_STATS",
		CircBW:          "CIRC_BW",
		TransportLaunch: "TRANSPORT_LAUNCHED",
		HSDesc:          "HS_DESC",
		HSDescContent:   "HS_DESC_CONTENT",
		NetworkLiveness: "NETWORK_LIVENESS",
	}
	codeOf map[string]Code

	// legacyNames are accepted in SETEVENTS and silently ignored (with a
	// caller-supplied warning), rather than rejected as unrecognized.
	legacyNames = map[string]bool{
		"EXTENDED":         true,
		"AUTHDIR_NEWDESCS": true,
	}
)

func init() {
	codeOf = make(map[string]Code, len(nameOf))
	for c, n := range nameOf {
		codeOf[n] = c
	}
}

// Name returns the wire name for c, or "" if c is not a known code.
func (c Code) Name() string { return nameOf[c] }

// String implements fmt.Stringer for debug output.
func (c Code) String() string {
	if n := nameOf[c]; n != "" {
		return n
	}
	return "UNKNOWN"
}

// Lookup resolves a case-insensitive event name to its Code. ok is false
// for unknown names; legacy is true for names that are recognized but
// deliberately carry no code (EXTENDED, AUTHDIR_NEWDESCS).
func Lookup(name string) (code Code, legacy bool, ok bool) {
	up := strings.ToUpper(name)
	if legacyNames[up] {
		return 0, true, true
	}
	c, found := codeOf[up]
	return c, false, found
}

// AllNames returns every registered event name, in ascending code order.
func AllNames() []string {
	out := make([]string, 0, len(nameOf))
	for c := Min; c <= Max; c++ {
		if n, ok := nameOf[c]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Mask is a 64-bit set of event codes: bit c set means "interested in code
// c". Codes run from 1 so that a zero Mask unambiguously means "nothing".
type Mask uint64

// Bit returns the single-bit mask for c.
func (c Code) Bit() Mask { return Mask(1) << uint(c) }

// Has reports whether m contains c.
func (m Mask) Has(c Code) bool { return m&c.Bit() != 0 }

// Set returns m with c added.
func (m Mask) Set(c Code) Mask { return m | c.Bit() }

// Clear returns m with c removed.
func (m Mask) Clear(c Code) Mask { return m &^ c.Bit() }

// Union returns the bitwise OR of a and b.
func Union(a, b Mask) Mask { return a | b }

// perSecondMask is the fixed set of event codes whose handlers fire once a
// second; AnyPerSecondEnabled tests the global mask against it.
const perSecondMask = Mask(uint64(1)<<BW | uint64(1)<<CellStats | uint64(1)<<CircBW | uint64(1)<<ConnBW | uint64(1)<<StreamBW)

// AnyPerSecond reports whether m contains any of the five per-second event
// bits (BW, CELL_STATS, CIRC_BW, CONN_BW, STREAM_BW).
func (m Mask) AnyPerSecond() bool { return m&perSecondMask != 0 }
