// Package parser implements the family of pure, side-effect-free parsers
// named in spec §4.F: subject.txt, DAT (5- and 7-field), the Machi "offlaw"
// variant, bbsmenu.html, and INI files. Every parser here takes declared
// input (bytes/string plus an already-decoded charset) and returns
// structured data with no I/O of its own.
package parser

// SubjectRecord is one line of a board's subject.txt thread index.
type SubjectRecord struct {
	FileName string
	Title    string
	Count    int
}

// Res is a single response (post) within a thread.
type Res struct {
	Number   int
	Name     string
	Mail     string
	DateTime string
	Body     string
	Title    string // populated only for response #1
	ID       string // populated only for 7-field (JBBS) format
}
