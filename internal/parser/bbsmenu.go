package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// MenuBoard is one board link found within bbsmenu.html.
type MenuBoard struct {
	Title string
	URL   string
}

// MenuCategory is a named heading together with the board links that
// followed it, in document order.
type MenuCategory struct {
	Name   string
	Boards []MenuBoard
}

// ParseBBSMenu extracts <BR><A HREF="...">title</A> board links grouped by
// the nearest preceding heading element, per spec §4.F. Categories with no
// boards are dropped. Parsing the whole document into zero categories (for
// example a transient upstream error page) yields an empty, non-nil slice;
// callers are responsible for spec invariant 5 — a zero-category parse must
// not overwrite a previously cached non-empty menu.
func ParseBBSMenu(html string) ([]MenuCategory, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	categories := make([]MenuCategory, 0)
	currentIdx := -1

	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node == nil {
			return
		}
		switch {
		case node.Type == html.ElementNode && isHeading(node.Data):
			name := strings.TrimSpace(s.Text())
			if name == "" {
				return
			}
			categories = append(categories, MenuCategory{Name: name})
			currentIdx = len(categories) - 1
		case node.Type == html.ElementNode && node.Data == "a":
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			title := strings.TrimSpace(s.Text())
			if currentIdx == -1 {
				categories = append(categories, MenuCategory{Name: ""})
				currentIdx = len(categories) - 1
			}
			categories[currentIdx].Boards = append(categories[currentIdx].Boards, MenuBoard{Title: title, URL: href})
		}
	})

	out := make([]MenuCategory, 0, len(categories))
	for _, c := range categories {
		if len(c.Boards) > 0 {
			out = append(out, c)
		}
	}
	return out, nil
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4":
		return true
	default:
		return false
	}
}
