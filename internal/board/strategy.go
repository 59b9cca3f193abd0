package board

import (
	"fmt"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
)

// type2chStrategy is the default: 5ch.net / bbspink.com and any board that
// does not declare one of the three other networks.
type type2chStrategy struct{}

func (type2chStrategy) SubjectURL(b Board) string { return b.URL + "subject.txt" }

func (type2chStrategy) DatURL(b Board, threadID string) string {
	return fmt.Sprintf("%sdat/%s.dat", b.URL, threadID)
}

func (type2chStrategy) WriteURL(b Board) string { return b.ServerURL + "test/bbs.cgi" }

func (type2chStrategy) ReadCharset() codec.Encoding  { return codec.ShiftJIS }
func (type2chStrategy) WriteCharset() codec.Encoding { return codec.ShiftJIS }

// rawmodeStrategy covers JBBS and Shitaraba, which both read through
// rawmode.cgi and write through bbs/write.cgi but differ in read charset: Shitaraba reads
// Shift_JIS, JBBS reads EUC-JP; both write EUC-JP (spec's "Charset per
// family" table).
type rawmodeStrategy struct {
	readCharset  codec.Encoding
	writeCharset codec.Encoding
}

func (rawmodeStrategy) SubjectURL(b Board) string { return b.URL + "subject.txt" }

func (rawmodeStrategy) DatURL(b Board, threadID string) string {
	return fmt.Sprintf("%sbbs/rawmode.cgi/%s/%s/%s/", b.ServerURL, b.JbbsDir, b.BbsID, threadID)
}

func (rawmodeStrategy) WriteURL(b Board) string { return b.ServerURL + "bbs/write.cgi" }

func (s rawmodeStrategy) ReadCharset() codec.Encoding { return s.readCharset }

func (s rawmodeStrategy) WriteCharset() codec.Encoding { return s.writeCharset }

// machiStrategy covers Machi BBS's offlaw.cgi/write.cgi pair. The spec
// leaves Machi's charset unspecified; it is treated as Shift_JIS for both
// directions, matching the legacy convention the other 2channel-lineage
// networks share.
type machiStrategy struct{}

func (machiStrategy) SubjectURL(b Board) string { return b.URL + "subject.txt" }

func (machiStrategy) DatURL(b Board, threadID string) string {
	return fmt.Sprintf("%sbbs/offlaw.cgi/%s/%s/", b.ServerURL, b.BbsID, threadID)
}

func (machiStrategy) WriteURL(b Board) string { return b.ServerURL + "bbs/write.cgi" }

func (machiStrategy) ReadCharset() codec.Encoding  { return codec.ShiftJIS }
func (machiStrategy) WriteCharset() codec.Encoding { return codec.ShiftJIS }
