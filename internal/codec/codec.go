// Package codec converts between Go strings and the byte encodings used by
// the 2channel-lineage networks: Shift_JIS, EUC-JP, and UTF-8. It also
// implements numeric-character-reference escaping and the x-www-form-urlencoded
// variant used by post submissions.
package codec

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies one of the three charsets this client family speaks.
type Encoding int

const (
	// ShiftJIS accepts the Windows-31J superset on decode and prefers strict
	// Shift_JIS on encode.
	ShiftJIS Encoding = iota
	// EUCJP is EUC-JP, used by Shitaraba/JBBS.
	EUCJP
	// UTF8 is a passthrough encoding.
	UTF8
)

// EncodingFailure is returned when a byte sequence cannot be decoded, or a
// string cannot be represented, in the requested encoding without permissive
// mode.
type EncodingFailure struct {
	Encoding Encoding
	Op       string
	Err      error
}

func (e *EncodingFailure) Error() string {
	return fmt.Sprintf("codec: %s failed for encoding %d: %v", e.Op, e.Encoding, e.Err)
}

func (e *EncodingFailure) Unwrap() error { return e.Err }

func encoderFor(enc Encoding) encoding.Encoding {
	switch enc {
	case ShiftJIS:
		return japanese.ShiftJIS
	case EUCJP:
		return japanese.EUCJP
	default:
		return unicode.UTF8
	}
}

// Decode converts bytes in the given encoding to a Go (UTF-8) string. When
// permissive is false, any byte sequence japanese.ShiftJIS/EUCJP cannot map
// (the decoder substitutes U+FFFD for it) produces an EncodingFailure; for
// UTF8, input that is not valid UTF-8 does. When permissive is true, those
// bytes are kept as U+FFFD instead of failing.
func Decode(b []byte, enc Encoding, permissive bool) (string, error) {
	out, err := encoderFor(enc).NewDecoder().Bytes(b)
	if err != nil {
		return "", &EncodingFailure{Encoding: enc, Op: "decode", Err: err}
	}
	if !permissive {
		invalid := bytes.ContainsRune(out, utf8.RuneError)
		if enc == UTF8 {
			invalid = !utf8.Valid(b)
		}
		if invalid {
			return "", &EncodingFailure{Encoding: enc, Op: "decode", Err: fmt.Errorf("invalid byte sequence")}
		}
	}
	return string(out), nil
}

// Encode converts a Go string to bytes in the given encoding. Codepoints not
// representable in the target encoding cause an EncodingFailure; callers
// that need to tolerate this should run NCREscape first.
func Encode(s string, enc Encoding) ([]byte, error) {
	base := encoderFor(enc)
	out, err := base.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &EncodingFailure{Encoding: enc, Op: "encode", Err: err}
	}
	return out, nil
}

// NCREscape rewrites every rune in s that cannot be represented in target
// into its decimal numeric character reference form, "&#<decimal>;".
// Surrogate pairs are never considered: Go strings are already sequences of
// full Unicode codepoints (runes), so this operates correctly on astral
// characters without any UTF-16 reassembly.
func NCREscape(s string, target Encoding) string {
	enc := encoderFor(target)
	var buf bytes.Buffer
	for _, r := range s {
		encoder := enc.NewEncoder()
		if _, err := encoder.String(string(r)); err != nil {
			fmt.Fprintf(&buf, "&#%d;", r)
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}

// formSafe reports whether b is one of the literal-safe bytes for
// x-www-form-urlencoded: A-Za-z0-9 * - . @ _
func formSafe(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '*' || b == '-' || b == '.' || b == '@' || b == '_':
		return true
	}
	return false
}

// FormURLEncode encodes s as x-www-form-urlencoded using the given charset:
// the literal-safe ASCII set passes through unchanged, space becomes '+',
// and every other byte of the charset-encoded representation is
// percent-encoded with uppercase hex digits.
func FormURLEncode(s string, enc Encoding) (string, error) {
	raw, err := Encode(s, enc)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for _, b := range raw {
		switch {
		case formSafe(b):
			buf.WriteByte(b)
		case b == ' ':
			buf.WriteByte('+')
		default:
			fmt.Fprintf(&buf, "%%%02X", b)
		}
	}
	return buf.String(), nil
}
