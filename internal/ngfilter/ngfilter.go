// Package ngfilter implements spec §4.J's NG rule matching engine: ordered
// rules scoped by board/thread/name/id/body, each either a plain
// all-tokens-must-match test or a single compiled case-insensitive regexp,
// resulting in a Normal (placeholder) or Transparent (hidden) abon.
package ngfilter

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Target names which part of a response/board/thread a Rule inspects.
type Target int

const (
	TargetBoard Target = iota
	TargetThread
	TargetName
	TargetID
	TargetBody
)

// AbonType controls how a matched item is rendered.
type AbonType int

const (
	// AbonNormal replaces the matched item with a placeholder.
	AbonNormal AbonType = iota
	// AbonTransparent hides the matched item entirely.
	AbonTransparent
)

// MatchMode selects how Tokens is interpreted.
type MatchMode int

const (
	// MatchPlain requires every token to be a substring of the candidate.
	MatchPlain MatchMode = iota
	// MatchRegexp compiles Tokens[0] as a case-insensitive regexp.
	MatchRegexp
)

// Placeholder is the text substituted for an AbonNormal match.
const Placeholder = "あぼーん"

// Rule is spec §3's NgRule. BoardID/ThreadID scope the rule: empty means
// unscoped (applies everywhere); non-empty means the rule only applies when
// the evaluated item belongs to that board/thread.
type Rule struct {
	ID       string
	Target   Target
	AbonType AbonType
	Match    MatchMode
	Tokens   []string
	BoardID  string
	ThreadID string
	Enabled  bool

	compiled   *regexp.Regexp
	compileErr error
}

// NewRule builds a Rule with a generated ID, pre-compiling its regexp (for
// MatchRegexp rules) so a malformed pattern disables the rule rather than
// panicking at evaluation time.
func NewRule(target Target, abonType AbonType, match MatchMode, tokens []string, boardID, threadID string) Rule {
	r := Rule{
		ID:       uuid.NewString(),
		Target:   target,
		AbonType: abonType,
		Match:    match,
		Tokens:   tokens,
		BoardID:  boardID,
		ThreadID: threadID,
		Enabled:  true,
	}
	r.compile()
	return r
}

func (r *Rule) compile() {
	if r.Match != MatchRegexp {
		return
	}
	if len(r.Tokens) == 0 {
		r.compileErr = errEmptyPattern
		return
	}
	re, err := regexp.Compile("(?i)" + r.Tokens[0])
	if err != nil {
		r.compileErr = err
		return
	}
	r.compiled = re
}

var errEmptyPattern = errors.New("ngfilter: regexp rule has no pattern token")

// active reports whether r should be evaluated at all: enabled, scope
// matches, and (for MatchRegexp) the pattern compiled successfully. A
// broken regexp disables the rule gracefully rather than erroring the
// whole evaluation, per spec's boundary-test requirement.
func (r Rule) active(boardID, threadID string) bool {
	if !r.Enabled {
		return false
	}
	if r.Match == MatchRegexp && (r.compiled == nil || r.compileErr != nil) {
		return false
	}
	if r.BoardID != "" && r.BoardID != boardID {
		return false
	}
	if r.ThreadID != "" && r.ThreadID != threadID {
		return false
	}
	return true
}

// matches reports whether candidate satisfies r's match mode.
func (r Rule) matches(candidate string) bool {
	switch r.Match {
	case MatchRegexp:
		return r.compiled.MatchString(candidate)
	default:
		for _, tok := range r.Tokens {
			if !strings.Contains(candidate, tok) {
				return false
			}
		}
		return len(r.Tokens) > 0
	}
}

// Verdict is the outcome of evaluating a candidate against a rule set.
type Verdict struct {
	Abon     bool
	AbonType AbonType
	RuleID   string
}

// Engine holds an ordered rule set and evaluates candidates against it.
type Engine struct {
	rules []Rule
}

// New creates an Engine with the given rules, in evaluation order.
func New(rules []Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Rules returns the engine's current rule set.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// SetRules replaces the engine's rule set, recompiling any MatchRegexp
// rules whose pattern has not yet been compiled.
func (e *Engine) SetRules(rules []Rule) {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		if r.Match == MatchRegexp && r.compiled == nil && r.compileErr == nil {
			r.compile()
		}
		out[i] = r
	}
	e.rules = out
}

// Add appends rule to the engine's rule set, compiling it if needed.
func (e *Engine) Add(r Rule) {
	if r.Match == MatchRegexp && r.compiled == nil && r.compileErr == nil {
		r.compile()
	}
	e.rules = append(e.rules, r)
}

// Remove deletes the rule with the given id, reporting whether one was found.
func (e *Engine) Remove(id string) bool {
	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Evaluate scans the rule set in order for the first active rule of target
// whose scope matches (boardID, threadID) and whose match test passes
// against candidate. The first match wins.
func (e *Engine) Evaluate(target Target, candidate, boardID, threadID string) Verdict {
	for _, r := range e.rules {
		if r.Target != target {
			continue
		}
		if !r.active(boardID, threadID) {
			continue
		}
		if r.matches(candidate) {
			return Verdict{Abon: true, AbonType: r.AbonType, RuleID: r.ID}
		}
	}
	return Verdict{}
}

// Render applies a Verdict to text: AbonNormal yields Placeholder,
// AbonTransparent yields "" (callers drop the item entirely), and a
// non-matching Verdict returns text unchanged.
func Render(v Verdict, text string) string {
	if !v.Abon {
		return text
	}
	if v.AbonType == AbonTransparent {
		return ""
	}
	return Placeholder
}
