// Package reply formats numbered control-protocol reply lines onto a
// client's outbound buffer: the "CCCsP\r\n" shape shared by final,
// continuation, and data-introduction replies, plus the escaped-data
// reply helper.
package reply

import (
	"fmt"
	"io"

	"github.com/torctl/ctrlevent/escape"
)

// separator selects the reply-line shape: ' ' for the final line of a
// reply, '-' for a continuation line, '+' for a line introducing an
// escaped-data block.
type separator byte

const (
	sepFinal separator = ' '
	sepMid   separator = '-'
	sepData  separator = '+'
)

// writeLine appends "CCCsP\r\n" to w. Allocation failure inside
// formatting is not a condition this core can recover from: io.Writer
// failures here are returned rather than swallowed, leaving the
// fatal-vs-retry decision to the caller's outbound-buffer
// implementation.
func writeLine(w io.Writer, code int, sep separator, payload string) error {
	_, err := fmt.Fprintf(w, "%03d%c%s\r\n", code, sep, payload)
	return err
}

// WriteFinal writes the final line of a reply: "CCC payload\r\n".
func WriteFinal(w io.Writer, code int, payload string) error {
	return writeLine(w, code, sepFinal, payload)
}

// WriteFinalf is WriteFinal with printf-style formatting.
func WriteFinalf(w io.Writer, code int, format string, args ...any) error {
	return WriteFinal(w, code, fmt.Sprintf(format, args...))
}

// WriteMid writes a continuation line of a multi-line reply:
// "CCC-payload\r\n".
func WriteMid(w io.Writer, code int, payload string) error {
	return writeLine(w, code, sepMid, payload)
}

// WriteMidf is WriteMid with printf-style formatting.
func WriteMidf(w io.Writer, code int, format string, args ...any) error {
	return WriteMid(w, code, fmt.Sprintf(format, args...))
}

// WriteDataIntro writes the initial line of an escaped-data reply:
// "CCC+payload\r\n". The escaped data block itself is written separately
// via WriteData.
func WriteDataIntro(w io.Writer, code int, payload string) error {
	return writeLine(w, code, sepData, payload)
}

// WriteDataIntrof is WriteDataIntro with printf-style formatting.
func WriteDataIntrof(w io.Writer, code int, format string, args ...any) error {
	return WriteDataIntro(w, code, fmt.Sprintf(format, args...))
}

// WriteData writes a complete escaped-data reply: the introduction line
// followed by the dot-stuffed encoding of data.
func WriteData(w io.Writer, code int, intro string, data []byte, logf escape.Logf) error {
	if err := WriteDataIntro(w, code, intro); err != nil {
		return err
	}
	_, err := w.Write(escape.WriteEscaped(data, logf))
	return err
}

// WriteOK writes the canonical "250 OK\r\n" final reply.
func WriteOK(w io.Writer) error {
	return WriteFinal(w, 250, "OK")
}
