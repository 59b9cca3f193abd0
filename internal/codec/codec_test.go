package codec

import "testing"

func TestFormURLEncodeLiteralSet(t *testing.T) {
	got, err := FormURLEncode("a Z0-9*-.@_ ", UTF8)
	if err != nil {
		t.Fatalf("FormURLEncode: %v", err)
	}
	want := "a+Z0-9*-.@_+"
	if got != want {
		t.Errorf("FormURLEncode() = %q, want %q", got, want)
	}
}

func TestFormURLEncodePercentEncodesOther(t *testing.T) {
	got, err := FormURLEncode("a=b&c", UTF8)
	if err != nil {
		t.Fatalf("FormURLEncode: %v", err)
	}
	want := "a%3Db%26c"
	if got != want {
		t.Errorf("FormURLEncode() = %q, want %q", got, want)
	}
}

func TestNCREscapeRoundTripsASCII(t *testing.T) {
	s := "hello world 123"
	got := NCREscape(s, ShiftJIS)
	if got != s {
		t.Errorf("NCREscape() = %q, want unchanged %q", got, s)
	}
}

func TestNCREscapeAstralCodepoint(t *testing.T) {
	// U+1F351 (PEACH) is not representable in Shift_JIS; it must be escaped
	// as one decimal NCR, not split into UTF-16 surrogate halves.
	s := string(rune(0x1F351))
	got := NCREscape(s, ShiftJIS)
	want := "&#127825;"
	if got != want {
		t.Errorf("NCREscape() = %q, want %q", got, want)
	}
}

func TestShiftJISRoundTrip(t *testing.T) {
	s := "名無しさん"
	enc, err := Encode(s, ShiftJIS)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := Decode(enc, ShiftJIS, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec != s {
		t.Errorf("round trip = %q, want %q", dec, s)
	}
}

func TestEUCJPRoundTrip(t *testing.T) {
	s := "スレッドタイトル"
	enc, err := Encode(s, EUCJP)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := Decode(enc, EUCJP, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec != s {
		t.Errorf("round trip = %q, want %q", dec, s)
	}
}

func TestDecodeInvalidBytesFailsStrict(t *testing.T) {
	// 0x81 is a Shift_JIS lead byte, but 0xff is not a valid trail byte.
	_, err := Decode([]byte{0x81, 0xff, 0x00}, ShiftJIS, false)
	if err == nil {
		t.Fatalf("expected EncodingFailure, got nil")
	}
}
