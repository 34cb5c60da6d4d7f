package reply

import (
	"fmt"

	"github.com/torctl/ctrlevent/escape"
	"github.com/torctl/ctrlevent/events"
)

// FormatEvent builds a complete "650 <NAME> <args>\r\n" event payload.
// The bytes handed to the dispatcher already carry the status prefix,
// event name, arguments, and trailing CRLF. args may be empty, in which
// case the trailing space before it is omitted.
func FormatEvent(code events.Code, args string) []byte {
	if args == "" {
		return []byte(fmt.Sprintf("650 %s\r\n", code.Name()))
	}
	return []byte(fmt.Sprintf("650 %s %s\r\n", code.Name(), args))
}

// FormatEventData builds a "650+<NAME>\r\n<escaped-data>" event payload for
// events whose body is itself a dot-stuffed data block (e.g. multi-line
// status events).
func FormatEventData(code events.Code, data []byte, logf escape.Logf) []byte {
	out := []byte(fmt.Sprintf("650+%s\r\n", code.Name()))
	return append(out, escape.WriteEscaped(data, logf)...)
}
