package board

import (
	"strings"

	"github.com/roflsunriz/VBBB-sub002/internal/parser"
)

// BuildMenuFromParsed converts the raw board links goquery extracted from
// bbsmenu.html into a BBSMenu of typed Boards, inferring each board's Type
// from its URL shape. Per spec invariant 5, callers must not let an empty
// result here overwrite a previously cached non-empty menu — that decision
// belongs to the cache layer, not this pure conversion.
func BuildMenuFromParsed(categories []parser.MenuCategory) BBSMenu {
	out := BBSMenu{Categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		cat := Category{Name: c.Name, Boards: make([]Board, 0, len(c.Boards))}
		for _, mb := range c.Boards {
			cat.Boards = append(cat.Boards, boardFromURL(mb.Title, mb.URL))
		}
		out.Categories = append(out.Categories, cat)
	}
	return out
}

// boardFromURL infers boardType, bbsId, serverUrl, and (for JBBS) jbbsDir
// from a board's canonical URL shape.
func boardFromURL(title, rawURL string) Board {
	u := normalizeURL(rawURL)

	if idx := strings.Index(u, "://"); idx != -1 {
		rest := u[idx+3:]
		if slash := strings.Index(rest, "/"); slash != -1 {
			host := rest[:slash]
			path := rest[slash+1:]
			serverURL := u[:idx+3] + host + "/"

			segments := strings.Split(strings.TrimSuffix(path, "/"), "/")
			switch {
			case strings.Contains(host, "machi.to"):
				return New(title, u, lastSegment(segments), serverURL, TypeMachiBBS, "")
			case len(segments) >= 2 && (strings.Contains(host, "jbbs") || strings.Contains(host, "shitaraba")):
				boardType := TypeShitaraba
				if strings.Contains(host, "jbbs") {
					boardType = TypeJBBS
				}
				dir := segments[0]
				bbsID := lastSegment(segments)
				return New(title, u, bbsID, serverURL, boardType, dir)
			default:
				return New(title, u, lastSegment(segments), serverURL, Type2ch, "")
			}
		}
	}
	return New(title, u, "", u, Type2ch, "")
}

func lastSegment(segments []string) string {
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
