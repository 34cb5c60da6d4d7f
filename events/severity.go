package events

// Severity mirrors the five log-level events (DEBUG..ERR) as an ordered
// scale, so the registry can compute an inclusive [min, max] window over
// them the same way the log subsystem's callback severity range works.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarn
	SeverityErr
)

// logEventCodes lists the five log-level codes in ascending severity order;
// index i corresponds to Severity(i).
var logEventCodes = [...]Code{Debug, Info, Notice, Warn, Err}

// LogEventCode returns the event code for a given severity.
func LogEventCode(s Severity) Code { return logEventCodes[s] }

// SeverityOfLogEvent returns the severity for a log-level event code, and
// ok=false if c is not one of the five log-level codes.
func SeverityOfLogEvent(c Code) (Severity, bool) {
	for i, lc := range logEventCodes {
		if lc == c {
			return Severity(i), true
		}
	}
	return 0, false
}

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityNotice:
		return "notice"
	case SeverityWarn:
		return "warn"
	case SeverityErr:
		return "err"
	default:
		return "unknown"
	}
}
