package orconn

import "strings"

// reasonText maps the END_OR_CONN_REASON_* constant names producers
// pass in to the short control-string form used in the REASON= clause.
var reasonText = map[string]string{
	"END_OR_CONN_REASON_DONE":           "DONE",
	"END_OR_CONN_REASON_REFUSED":        "CONNECTREFUSED",
	"END_OR_CONN_REASON_OR_IDENTITY":    "IDENTITY",
	"END_OR_CONN_REASON_CONNRESET":      "CONNECTRESET",
	"END_OR_CONN_REASON_TIMEOUT":        "TIMEOUT",
	"END_OR_CONN_REASON_NO_ROUTE":       "NOROUTE",
	"END_OR_CONN_REASON_IO_ERROR":       "IOERROR",
	"END_OR_CONN_REASON_RESOURCE_LIMIT": "RESOURCELIMIT",
	"END_OR_CONN_REASON_PT_MISSING":     "PT_MISSING",
	"END_OR_CONN_REASON_MISC":           "MISC",
}

// ReasonText resolves an end-reason constant name to its REASON= text.
// An unknown name yields "MISC" rather than an empty clause; empty
// input stays empty (no reason supplied).
func ReasonText(reason string) string {
	if reason == "" {
		return ""
	}
	if t, ok := reasonText[strings.ToUpper(reason)]; ok {
		return t
	}
	return "MISC"
}
