package registry

import "github.com/torctl/ctrlevent/events"

// adjustLogSeverity computes the inclusive severity window implied by
// mask and installs it on the log subsystem: a linear sweep over
// [DEBUG, ERR] finds the lowest and highest subscribed log-level event,
// widened to at least [NOTICE, ERR] if STATUS_GENERAL is set, and
// narrowed to ERR-only (effectively disabled) if nothing qualifies.
func (r *Registry) adjustLogSeverity(mask events.Mask) {
	if r.logSink == nil {
		return
	}

	min, max, found := events.SeverityErr, events.SeverityDebug, false
	for s := events.SeverityDebug; s <= events.SeverityErr; s++ {
		if mask.Has(events.LogEventCode(s)) {
			if !found {
				min = s
			}
			max = s
			found = true
		}
	}

	if mask.Has(events.StatusGeneral) {
		if !found {
			min, max, found = events.SeverityNotice, events.SeverityErr, true
		} else {
			if min > events.SeverityNotice {
				min = events.SeverityNotice
			}
			if max < events.SeverityErr {
				max = events.SeverityErr
			}
		}
	}

	if !found {
		min, max = events.SeverityErr, events.SeverityErr
	}

	r.logSink.SetSeverityRange(min, max, r.logCB)
}
