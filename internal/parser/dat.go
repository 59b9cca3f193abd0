package parser

import (
	"fmt"
	"strconv"
	"strings"
)

const fieldSep = "<>"

// ParseDat5Line parses one line of a 5-field DAT (5ch/2ch family):
// name<>mail<>dateTime<>body<>title. number is the 1-based line index,
// which the caller supplies since it is positional, not part of the line
// itself. Title is non-empty only on response #1 in a well-formed DAT, but
// this function does not enforce that — it simply returns the fifth field.
func ParseDat5Line(line string, number int) (Res, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 5 {
		return Res{}, fmt.Errorf("parser: dat5 line %d: expected 5 fields, got %d", number, len(fields))
	}
	body := fields[3]
	if body == "" {
		body = "&nbsp;"
	}
	return Res{
		Number:   number,
		Name:     fields[0],
		Mail:     fields[1],
		DateTime: fields[2],
		Body:     body,
		Title:    fields[4],
	}, nil
}

// SerializeDat5Line reconstructs the exact on-wire line for r, the inverse of
// ParseDat5Line. For round-tripping, callers must pass the original Body
// (including the "&nbsp;" substitution already applied by ParseDat5Line);
// SerializeDat5Line does not reverse that substitution.
func SerializeDat5Line(r Res) string {
	return strings.Join([]string{r.Name, r.Mail, r.DateTime, r.Body, r.Title}, fieldSep)
}

// ParseDat5 splits text into lines (CRLF and LF both accepted) and parses
// each as a 5-field DAT response, numbering from 1. Malformed lines produce
// an error that includes the offending line number; callers that want
// best-effort parsing should parse line-by-line with ParseDat5Line instead.
func ParseDat5(text string) ([]Res, error) {
	lines := splitLines(text)
	out := make([]Res, 0, len(lines))
	for i, line := range lines {
		res, err := ParseDat5Line(line, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ParseDat7Line parses one line of a 7-field DAT (JBBS/Shitaraba family):
// number<>name<>mail<>dateTime<>body<>title<>id. number may have gaps
// (deleted posts), so it is parsed from the line itself rather than assigned
// positionally.
func ParseDat7Line(line string) (Res, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 7 {
		return Res{}, fmt.Errorf("parser: dat7 line: expected 7 fields, got %d", len(fields))
	}
	number, err := strconv.Atoi(fields[0])
	if err != nil {
		return Res{}, fmt.Errorf("parser: dat7 line: invalid response number %q: %w", fields[0], err)
	}
	body := fields[4]
	if body == "" {
		body = "&nbsp;"
	}
	return Res{
		Number:   number,
		Name:     fields[1],
		Mail:     fields[2],
		DateTime: fields[3],
		Body:     body,
		Title:    fields[5],
		ID:       fields[6],
	}, nil
}

// ParseDat7 splits text into lines and parses each as a 7-field DAT response.
func ParseDat7(text string) ([]Res, error) {
	var out []Res
	for _, line := range splitLines(text) {
		res, err := ParseDat7Line(line)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ParseMachiOfflawLine parses one line of Machi BBS's "offlaw" 7-field
// variant. The field layout (leading response number, trailing ID) matches
// ParseDat7Line's; the two are kept as distinct entry points because the two
// networks' wire formats are documented separately in spec §4.F and may
// diverge in a future revision without forcing callers to disambiguate by
// board type at the call site.
func ParseMachiOfflawLine(line string) (Res, error) {
	return ParseDat7Line(line)
}

// ParseMachiOfflaw splits text into lines and parses each with
// ParseMachiOfflawLine.
func ParseMachiOfflaw(text string) ([]Res, error) {
	return ParseDat7(text)
}
