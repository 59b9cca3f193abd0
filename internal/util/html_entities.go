package util

import (
	"regexp"
	"strconv"
	"strings"
)

// entityPattern matches &name;, &#dec;, and &#xhex; in one pass, so a
// doubly-escaped sequence like "&amp;lt;" is decoded once (to "&lt;") and
// never collapses further to "<" (spec §4.O, test scenario 2).
var entityPattern = regexp.MustCompile(`&(?:#[xX]([0-9a-fA-F]+)|#([0-9]+)|([a-zA-Z]+));`)

var namedEntities = map[string]rune{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
	"apos": '\'',
	"nbsp": ' ',
}

// DecodeHTMLEntities performs a single-pass decode of the small named-entity
// set plus numeric character references. Numeric values outside
// [0, 0x10FFFF] or that fail to parse leave the original text for that match
// unchanged.
func DecodeHTMLEntities(s string) string {
	return entityPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := entityPattern.FindStringSubmatch(match)
		hex, dec, name := sub[1], sub[2], sub[3]

		switch {
		case hex != "":
			n, err := strconv.ParseInt(hex, 16, 32)
			if err != nil || n < 0 || n > 0x10FFFF {
				return match
			}
			return string(rune(n))
		case dec != "":
			n, err := strconv.ParseInt(dec, 10, 32)
			if err != nil || n < 0 || n > 0x10FFFF {
				return match
			}
			return string(rune(n))
		default:
			if r, ok := namedEntities[strings.ToLower(name)]; ok {
				return string(r)
			}
			return match
		}
	})
}
