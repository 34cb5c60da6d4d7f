package orconn

import (
	"strings"
	"testing"

	"github.com/torctl/ctrlevent/client"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/internal/testfakes"
	"github.com/torctl/ctrlevent/registry"
)

func TestDisplayNamePrecedence(t *testing.T) {
	digest := [20]byte{1, 2, 3}
	c := Conn{IdentityDigest: digest, Address: "198.51.100.7", Port: 9001}

	nt := testfakes.NewNodeTable()
	if got := DisplayName(nt, c); got != "$0102030000000000000000000000000000000000" {
		t.Fatalf("got %q", got)
	}

	nt.Set(digest, "$0102030000000000000000000000000000000000~relay1")
	if got := DisplayName(nt, c); got != "$0102030000000000000000000000000000000000~relay1" {
		t.Fatalf("nickname precedence failed, got %q", got)
	}

	if got := DisplayName(nil, Conn{Address: "198.51.100.7", Port: 9001}); got != "198.51.100.7:9001" {
		t.Fatalf("address fallback failed, got %q", got)
	}
}

func TestFormatStatusShortCircuitsWhenUninteresting(t *testing.T) {
	a := client.New()
	conns := testfakes.NewConnRegistry(a)
	reg := registry.New(conns, nil, nil, nil)
	reg.RecomputeGlobalMask()

	_, ok := FormatStatus(reg, nil, Conn{GlobalID: 1}, Launched, "", 0)
	if ok {
		t.Fatal("expected ok=false when nobody subscribes to ORCONN")
	}
}

func TestFormatStatusIncludesReasonAndNcircsOnlyAtTeardown(t *testing.T) {
	a := client.New()
	a.SetEventMask(events.OrConn.Bit())
	conns := testfakes.NewConnRegistry(a)
	reg := registry.New(conns, nil, nil, nil)
	reg.RecomputeGlobalMask()

	c := Conn{Address: "198.51.100.7", Port: 9001, GlobalID: 42}

	payload, ok := FormatStatus(reg, nil, c, Launched, "", 5)
	if !ok {
		t.Fatal("expected ok=true once ORCONN is subscribed")
	}
	if strings.Contains(string(payload), "NCIRCS") {
		t.Fatalf("NCIRCS must not appear for a non-teardown status, got %q", payload)
	}

	payload, ok = FormatStatus(reg, nil, c, Failed, ReasonText("END_OR_CONN_REASON_TIMEOUT"), 5)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := "650 ORCONN 198.51.100.7:9001 FAILED REASON=TIMEOUT NCIRCS=5 ID=42\r\n"
	if string(payload) != want {
		t.Fatalf("got %q, want %q", payload, want)
	}
}

func TestOrconnStatusClassification(t *testing.T) {
	nt := testfakes.NewNodeTable()
	states := []ConnState{
		{Conn: Conn{Address: "a", Port: 1}, Open: true},
		{Conn: Conn{Address: "b", Port: 2}, NicknameKnown: true},
		{Conn: Conn{Address: "c", Port: 3}},
	}

	got := OrconnStatus(nt, states)
	want := "a:1 CONNECTED\r\nb:2 LAUNCHED\r\nc:3 NEW"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReasonTextKnownAndUnknown(t *testing.T) {
	if got := ReasonText("END_OR_CONN_REASON_TIMEOUT"); got != "TIMEOUT" {
		t.Fatalf("got %q", got)
	}
	if got := ReasonText("END_OR_CONN_REASON_SOMETHING_NEW"); got != "MISC" {
		t.Fatalf("got %q, want MISC fallback", got)
	}
	if got := ReasonText(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
