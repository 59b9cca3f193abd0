package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// modernSubjectLine matches "<fileName>\t<title> (<count>)".
var modernSubjectLine = regexp.MustCompile(`^(\d+\.dat)\t(.*)\((\d+)\)\s*$`)

// legacySubjectLine matches the older " <fileName>,<title>(<count>)" shape.
var legacySubjectLine = regexp.MustCompile(`^\s*(\d+\.dat),(.*)\((\d+)\)\s*$`)

// ParseSubject parses a subject.txt document into an ordered list of
// SubjectRecord, preserving the upstream board-defined ranking. Invalid
// lines are skipped rather than aborting the whole parse. Titles are run
// through HTML-entity decoding (entity decoding lives in internal/util so
// every component shares one implementation).
func ParseSubject(text string) []SubjectRecord {
	var out []SubjectRecord
	for _, line := range splitLines(text) {
		if line == "" {
			continue
		}
		if m := modernSubjectLine.FindStringSubmatch(line); m != nil {
			if rec, ok := buildRecord(m); ok {
				out = append(out, rec)
			}
			continue
		}
		if m := legacySubjectLine.FindStringSubmatch(line); m != nil {
			if rec, ok := buildRecord(m); ok {
				out = append(out, rec)
			}
			continue
		}
		// Invalid line: skip, per spec §4.F.
	}
	return out
}

func buildRecord(m []string) (SubjectRecord, bool) {
	count, err := strconv.Atoi(m[3])
	if err != nil {
		return SubjectRecord{}, false
	}
	return SubjectRecord{
		FileName: m[1],
		Title:    util.DecodeHTMLEntities(strings.TrimSpace(m[2])),
		Count:    count,
	}, true
}

// splitLines splits on both CRLF and LF without producing a trailing empty
// element for a final newline.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
