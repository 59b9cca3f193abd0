package board

import (
	"testing"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
)

func TestNewNormalizesURL(t *testing.T) {
	b := New("News", "https://news.5ch.net/newsplus", "newsplus", "https://news.5ch.net/", Type2ch, "")
	if b.URL != "https://news.5ch.net/newsplus/" {
		t.Fatalf("expected trailing slash, got %q", b.URL)
	}
}

func TestType2chURLShapes(t *testing.T) {
	b := New("News", "https://news.5ch.net/newsplus/", "newsplus", "https://news.5ch.net/", Type2ch, "")
	if got, want := b.SubjectURL(), "https://news.5ch.net/newsplus/subject.txt"; got != want {
		t.Fatalf("SubjectURL got %q, want %q", got, want)
	}
	if got, want := b.DatURL("1234567890"), "https://news.5ch.net/newsplus/dat/1234567890.dat"; got != want {
		t.Fatalf("DatURL got %q, want %q", got, want)
	}
	if got, want := b.WriteURL(), "https://news.5ch.net/test/bbs.cgi"; got != want {
		t.Fatalf("WriteURL got %q, want %q", got, want)
	}
	if b.ReadCharset() != codec.ShiftJIS || b.WriteCharset() != codec.ShiftJIS {
		t.Fatalf("expected 5ch to read and write Shift_JIS")
	}
}

func TestJBBSURLShapesAndCharset(t *testing.T) {
	b := New("雑談", "https://jbbs.shitaraba.net/bbs/read.cgi/sample/1000/", "1000", "https://jbbs.shitaraba.net/", TypeJBBS, "sample")
	if got, want := b.DatURL("42"), "https://jbbs.shitaraba.net/bbs/rawmode.cgi/sample/1000/42/"; got != want {
		t.Fatalf("DatURL got %q, want %q", got, want)
	}
	if b.ReadCharset() != codec.EUCJP || b.WriteCharset() != codec.EUCJP {
		t.Fatalf("expected JBBS to read and write EUC-JP")
	}
}

func TestShitarabaWritesEUCJPReadsShiftJIS(t *testing.T) {
	b := New("雑談", "https://jbbs.shitaraba.net/bbs/read.cgi/sample/1000/", "1000", "https://jbbs.shitaraba.net/", TypeShitaraba, "sample")
	if b.ReadCharset() != codec.ShiftJIS {
		t.Fatalf("expected Shitaraba to read Shift_JIS")
	}
	if b.WriteCharset() != codec.EUCJP {
		t.Fatalf("expected Shitaraba to write EUC-JP")
	}
}

func TestOysterURL(t *testing.T) {
	b := New("News", "https://news.5ch.net/newsplus/", "newsplus", "https://news.5ch.net/", Type2ch, "")
	got := b.OysterURL("1234567890", "tag:abc123")
	want := "https://news.5ch.net/newsplus/kako/1234/1234567890.dat?sid=tag:abc123"
	if got != want {
		t.Fatalf("OysterURL got %q, want %q", got, want)
	}
}

func TestMachiURLShapes(t *testing.T) {
	b := New("雑談", "https://jof.machi.to/bbs/read.cgi/board/1000/", "1000", "https://jof.machi.to/", TypeMachiBBS, "")
	if got, want := b.DatURL("42"), "https://jof.machi.to/bbs/offlaw.cgi/1000/42/"; got != want {
		t.Fatalf("DatURL got %q, want %q", got, want)
	}
	if got, want := b.WriteURL(), "https://jof.machi.to/bbs/write.cgi"; got != want {
		t.Fatalf("WriteURL got %q, want %q", got, want)
	}
}
