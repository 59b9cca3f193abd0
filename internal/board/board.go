// Package board implements spec §4.G's per-board-type plugin dispatch and
// the Board/Category/BBSMenu types of spec §3. Boards are immutable after
// construction; only a menu refresh or an explicit external-board edit
// produces a new value.
package board

import (
	"fmt"
	"strings"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
)

// Type identifies which of the four supported networks a Board belongs to.
type Type int

const (
	Type2ch Type = iota
	TypeMachiBBS
	TypeShitaraba
	TypeJBBS
)

// Board is immutable after construction. Identity is URL.
type Board struct {
	Title     string
	URL       string // always ends with "/"
	BbsID     string
	ServerURL string
	BoardType Type
	JbbsDir   string // populated only for TypeJBBS
}

// Category is a named heading with an ordered sequence of boards.
type Category struct {
	Name   string
	Boards []Board
}

// BBSMenu is the full ordered menu: parsed upstream categories plus any
// user-maintained external boards appended by the caller.
type BBSMenu struct {
	Categories []Category
}

// normalizeURL ensures a board URL always ends with "/", per spec §3.
func normalizeURL(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

// New constructs a Board, normalizing its URL.
func New(title, rawURL, bbsID, serverURL string, boardType Type, jbbsDir string) Board {
	return Board{
		Title:     title,
		URL:       normalizeURL(rawURL),
		BbsID:     bbsID,
		ServerURL: serverURL,
		BoardType: boardType,
		JbbsDir:   jbbsDir,
	}
}

// strategyFor returns the dispatch strategy for b.BoardType.
func strategyFor(t Type) Strategy {
	switch t {
	case TypeMachiBBS:
		return machiStrategy{}
	case TypeShitaraba:
		return rawmodeStrategy{readCharset: codec.ShiftJIS, writeCharset: codec.EUCJP}
	case TypeJBBS:
		return rawmodeStrategy{readCharset: codec.EUCJP, writeCharset: codec.EUCJP}
	default:
		return type2chStrategy{}
	}
}

// Strategy captures the per-network URL shapes and charsets named in spec
// §4.G and the "Upstream URL shapes" / "Charset per family" tables. It
// deliberately stops short of performing I/O: internal/httpclient and
// internal/post own request execution, dispatch only tells them where to
// point and which charset to use.
type Strategy interface {
	SubjectURL(b Board) string
	DatURL(b Board, threadID string) string
	WriteURL(b Board) string
	ReadCharset() codec.Encoding
	WriteCharset() codec.Encoding
}

// SubjectURL returns the subject.txt URL for b.
func (b Board) SubjectURL() string { return strategyFor(b.BoardType).SubjectURL(b) }

// DatURL returns the DAT fetch URL for threadID on b.
func (b Board) DatURL(threadID string) string { return strategyFor(b.BoardType).DatURL(b, threadID) }

// WriteURL returns the post-submission endpoint for b.
func (b Board) WriteURL() string { return strategyFor(b.BoardType).WriteURL(b) }

// ReadCharset returns the charset used to decode fetched subject.txt/DAT
// bodies for b.
func (b Board) ReadCharset() codec.Encoding { return strategyFor(b.BoardType).ReadCharset() }

// WriteCharset returns the charset used to encode outgoing post bodies for b.
func (b Board) WriteCharset() codec.Encoding { return strategyFor(b.BoardType).WriteCharset() }

// OysterURL returns 5ch's paid past-log ("oyster"/kako) fetch URL for
// threadID on b, authenticated with an UPLIFT session token. This shape is
// 5ch-specific: Shitaraba, JBBS, and Machi have no equivalent archive
// endpoint in the spec's URL-shape table.
func (b Board) OysterURL(threadID, sid string) string {
	prefix := threadID
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%s%s/kako/%s/%s.dat?sid=%s", b.ServerURL, b.BbsID, prefix, threadID, sid)
}
