package registry

import (
	"io"

	"github.com/torctl/ctrlevent/api"
	"github.com/torctl/ctrlevent/events"
	"github.com/torctl/ctrlevent/logger"
	"github.com/torctl/ctrlevent/reply"
)

// ParseSetEvents resolves the event names of a SETEVENTS request into a
// mask. Names are case-insensitive. Legacy names (EXTENDED,
// AUTHDIR_NEWDESCS) are accepted and ignored with a warning through
// warnf. The first unknown name aborts the parse: badName carries it and
// ok is false, so the caller can reject the whole request with no
// partial effect.
func ParseSetEvents(names []string, warnf logger.Logf) (mask events.Mask, badName string, ok bool) {
	if warnf == nil {
		warnf = logger.Discard
	}
	for _, name := range names {
		code, legacy, found := events.Lookup(name)
		if !found {
			return 0, name, false
		}
		if legacy {
			warnf("registry: ignoring deprecated event name %q in SETEVENTS", name)
			continue
		}
		mask = mask.Set(code)
	}
	return mask, "", true
}

// HandleSetEvents applies a SETEVENTS request for client: the names are
// parsed into a mask, the mask is installed, the global mask is
// recomputed, and "250 OK" is written to w. An unknown name instead
// writes `552 Unrecognized event "NAME"` and leaves the client's mask
// untouched. A request with zero names installs the empty mask,
// unsubscribing the client from everything.
func (r *Registry) HandleSetEvents(w io.Writer, client api.Client, names []string, warnf logger.Logf) error {
	mask, badName, ok := ParseSetEvents(names, warnf)
	if !ok {
		return reply.WriteFinalf(w, 552, "Unrecognized event %q", badName)
	}
	r.SetClientMask(client, mask)
	return reply.WriteOK(w)
}
