// Package post implements spec §4.I's two-phase post engine: hidden-field
// extraction for the confirmation step, result-code classification, and the
// SambaTime.ini rate gate.
package post

import "strings"

// ResultKind is the outcome of submitting a post, scanned from the response
// body per spec §4.I's classification table.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultCookie
	ResultCheck
	ResultDonguriConsumed
	ResultDonguriBroken
	ResultError
	ResultSambaBlocked
)

// classifySignal pairs a substring (or, for the OK row, either of two
// substrings) with the ResultKind it indicates. Order matters: the first
// match wins.
type classifySignal struct {
	kind    ResultKind
	any     []string
	hasForm formPredicate
}

type formPredicate func(body string) bool

var classifySignals = []classifySignal{
	{kind: ResultOK, any: []string{"<!-- 2ch_X:true -->"}},
	{kind: ResultOK, any: []string{"書きこみが終わりました", "終わりました"}},
	{kind: ResultCookie, any: []string{"<!-- 2ch_X:cookie -->"}},
	{kind: ResultCheck, any: []string{"<!-- 2ch_X:check -->"}, hasForm: hasConfirmationForm},
	{kind: ResultDonguriConsumed, any: []string{"grtDonguri"}},
	{kind: ResultDonguriBroken, any: []string{"grtDngBroken", "broken_acorn", "[1044]", "[1045]", "[0088]"}},
	{kind: ResultError, any: []string{"ERROR", "エラー"}},
}

// Classify scans body against the ordered signal table and returns the first
// match, or ResultError if nothing matches.
func Classify(body string) ResultKind {
	for _, sig := range classifySignals {
		if sig.kind == ResultCheck {
			if sig.hasForm(body) || containsAny(body, sig.any) {
				return ResultCheck
			}
			continue
		}
		if containsAny(body, sig.any) {
			return sig.kind
		}
	}
	return ResultError
}

func containsAny(body string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(body, s) {
			return true
		}
	}
	return false
}

// hasConfirmationForm reports whether body carries the confirmation-form
// markers spec §4.I names: an input named "yuki", or hidden echoes of
// "subject"/"MESSAGE".
func hasConfirmationForm(body string) bool {
	lower := strings.ToLower(body)
	if strings.Contains(lower, `name="yuki"`) {
		return true
	}
	hasSubject := strings.Contains(lower, `name="subject"`)
	hasMessage := strings.Contains(lower, `name="message"`)
	return hasSubject && hasMessage
}
