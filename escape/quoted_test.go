package escape

import (
	"bytes"
	"testing"
)

func TestDecodeQuotedStringWithEscape(t *testing.T) {
	// Encodes the 3-byte payload a"b as `"a\"b"` (6 bytes).
	in := []byte(`"a\"b"`)
	payload, pos, ok := DecodeQuotedString(in, len(in))
	if !ok {
		t.Fatal("decode failed")
	}
	if !bytes.Equal(payload, []byte(`a"b`)) {
		t.Fatalf("payload = %q, want %q", payload, `a"b`)
	}
	if pos != len(in) {
		t.Fatalf("pos = %d, want %d", pos, len(in))
	}
}

func TestExtractQuotedStringIncludesEscapes(t *testing.T) {
	in := []byte(`"a\"b" trailing`)
	raw, pos, ok := ExtractQuotedString(in, len(in))
	if !ok {
		t.Fatal("extract failed")
	}
	if !bytes.Equal(raw, []byte(`"a\"b"`)) {
		t.Fatalf("raw = %q", raw)
	}
	if pos != len(`"a\"b"`) {
		t.Fatalf("pos = %d", pos)
	}
}

func TestDecodeQuotedStringUnterminated(t *testing.T) {
	if _, _, ok := DecodeQuotedString([]byte(`"abc`), 4); ok {
		t.Fatal("expected failure on unterminated string")
	}
}

func TestDecodeQuotedStringEscapeAtLimit(t *testing.T) {
	// Trailing backslash with no room for its continuation byte.
	if _, _, ok := DecodeQuotedString([]byte(`"ab\`), 4); ok {
		t.Fatal("expected failure when escape continuation exceeds limit")
	}
}

func TestDecodeQuotedStringNotQuoted(t *testing.T) {
	if _, _, ok := DecodeQuotedString([]byte(`abc"`), 4); ok {
		t.Fatal("expected failure when input does not start with a quote")
	}
}

func TestEncodeDecodeQuotedRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain",
		`has "quotes" inside`,
		`back\slash`,
		`both \ and " together`,
	}
	for _, s := range cases {
		enc := EncodeQuotedString([]byte(s))
		dec, pos, ok := DecodeQuotedString(enc, len(enc))
		if !ok {
			t.Fatalf("decode of %q failed", enc)
		}
		if string(dec) != s {
			t.Errorf("round trip: encode(%q)=%q, decode=%q", s, enc, dec)
		}
		if pos != len(enc) {
			t.Errorf("pos = %d, want %d", pos, len(enc))
		}
	}
}
