package parser

import "testing"

func TestParseSubjectModernFormat(t *testing.T) {
	text := "1234567890.dat\tスレッドタイトル (123)\n1234567891.dat\t二番目 (4)\n"
	got := ParseSubject(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(got), got)
	}
	if got[0] != (SubjectRecord{FileName: "1234567890.dat", Title: "スレッドタイトル", Count: 123}) {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1] != (SubjectRecord{FileName: "1234567891.dat", Title: "二番目", Count: 4}) {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestParseSubjectLegacyFormat(t *testing.T) {
	text := "1234567890.dat,古い形式のタイトル(42)\n"
	got := ParseSubject(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0] != (SubjectRecord{FileName: "1234567890.dat", Title: "古い形式のタイトル", Count: 42}) {
		t.Fatalf("unexpected record: %+v", got[0])
	}
}

func TestParseSubjectSkipsInvalidLines(t *testing.T) {
	text := "not a valid line\n1234567890.dat\tタイトル (1)\n\n"
	got := ParseSubject(text)
	if len(got) != 1 {
		t.Fatalf("expected invalid/blank lines to be skipped, got %+v", got)
	}
}

func TestParseSubjectEmptyDocument(t *testing.T) {
	got := ParseSubject("")
	if got != nil {
		t.Fatalf("expected nil slice for empty subject.txt, got %+v", got)
	}
}

func TestParseSubjectCRLF(t *testing.T) {
	text := "1234567890.dat\tタイトル (7)\r\n1234567891.dat\tタイトル2 (8)\r\n"
	got := ParseSubject(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 records from CRLF input, got %d", len(got))
	}
}

func TestParseSubjectDecodesHTMLEntitiesInTitle(t *testing.T) {
	text := "1234567890.dat\t&lt;AA&gt; &amp; 質問 (3)\n"
	got := ParseSubject(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Title != "<AA> & 質問" {
		t.Fatalf("expected decoded title, got %q", got[0].Title)
	}
}
