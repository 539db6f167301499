package rewrite

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/docpath"
)

// Option configures a RuleSet.
type Option func(*matcher)

// WithSegmentBoundaries only counts matches that are not glued to an
// adjacent path segment, so "apis/foo" no longer fires inside "apis/foobar".
func WithSegmentBoundaries() Option {
	return func(m *matcher) { m.segmentBoundaries = true }
}

// RuleSet is a validated, immutable sequence of rules. It is safe for
// concurrent use.
type RuleSet struct {
	rules []Rule
	match matcher
}

// Hit counts how often one rule fired during a rewrite.
type Hit struct {
	Rule  int
	Match string
	Count int
}

// Resolution is the outcome of resolving a navigation id against the rules.
type Resolution struct {
	ID        string
	Directory bool
	Rule      int
}

// NewRuleSet validates rules and freezes a copy of them. Every problem found
// is reported; the result joins *InvalidRuleError, *RuleOrderError and
// *ConflictingRuleError values.
func NewRuleSet(rules []Rule, opts ...Option) (*RuleSet, error) {
	rs := &RuleSet{rules: make([]Rule, len(rules))}
	for _, opt := range opts {
		opt(&rs.match)
	}
	for i, r := range rules {
		r.Kind = r.kind()
		r.Target = r.target()
		rs.rules[i] = r
	}

	var errs []error
	seen := make(map[string]int, len(rs.rules))
	for i, r := range rs.rules {
		switch {
		case r.Match == "":
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: "empty match"})
			continue
		case r.Replacement == "":
			// Deleting text joins its neighbours, which can form a match.
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: fmt.Sprintf("empty replacement for %q", r.Match)})
		case r.Kind != MatchExact && r.Kind != MatchPrefix:
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: fmt.Sprintf("unknown match kind %q", r.Kind)})
		case r.Target != TargetLeaf && r.Target != TargetDirectory:
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: fmt.Sprintf("unknown target kind %q", r.Target)})
		}
		if prev, dup := seen[r.Match]; dup {
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: fmt.Sprintf("duplicate match %q (first used by rule %d)", r.Match, prev)})
			continue
		}
		seen[r.Match] = i
	}

	errs = append(errs, checkOrder(rs.rules)...)
	errs = append(errs, rs.checkConflicts()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rs, nil
}

// MustRuleSet is NewRuleSet for static tables; it panics on invalid rules.
func MustRuleSet(rules []Rule, opts ...Option) *RuleSet {
	rs, err := NewRuleSet(rules, opts...)
	if err != nil {
		panic(err)
	}
	return rs
}

// checkOrder finds general rules listed before a rule whose match contains theirs.
func checkOrder(rules []Rule) []error {
	var errs []error
	for i := range rules {
		for j := i + 1; j < len(rules); j++ {
			gi, sj := rules[i].Match, rules[j].Match
			if gi == "" || gi == sj || !strings.Contains(sj, gi) {
				continue
			}
			errs = append(errs, &RuleOrderError{General: i, GeneralMatch: gi, Specific: j, SpecificMatch: sj})
		}
	}
	return errs
}

// checkConflicts rejects every replacement that overlaps a match. A match
// can then never appear in rewritten text: neither inside a replacement nor
// across its edge with the text around it.
func (rs *RuleSet) checkConflicts() []error {
	var errs []error
	for i, r := range rs.rules {
		if r.Replacement == "" {
			continue
		}
		for j, other := range rs.rules {
			if other.Match == "" {
				continue
			}
			if ov := overlapOf(r.Replacement, other.Match); ov != NoOverlap {
				errs = append(errs, &ConflictingRuleError{
					Rule:        i,
					Replacement: r.Replacement,
					Rematched:   j,
					Match:       other.Match,
					Overlap:     ov,
				})
			}
		}
	}
	return errs
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Rules returns a copy of the rules in order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	return append([]Rule(nil), rs.rules...)
}

// Rewrite applies the rules to text in order.
func (rs *RuleSet) Rewrite(text string) string {
	out, _ := rs.RewriteCounting(text)
	return out
}

// RewriteCounting applies the rules and reports, in rule order, every rule
// that fired at least once.
func (rs *RuleSet) RewriteCounting(text string) (string, []Hit) {
	if rs == nil {
		return text, nil
	}
	var hits []Hit
	for i, r := range rs.rules {
		var n int
		text, n = rs.match.replace(text, r.Match, r.Replacement)
		if n > 0 {
			hits = append(hits, Hit{Rule: i, Match: r.Match, Count: n})
		}
	}
	return text, hits
}

// Resolve maps a navigation id through the first rule that applies.
// Exact rules need id == Match; prefix rules need Match to be a
// segment-aligned prefix of id. Directory targets resolve to the
// replacement itself, leaf prefix targets keep the remainder of id.
func (rs *RuleSet) Resolve(id string) (Resolution, bool) {
	if rs == nil {
		return Resolution{}, false
	}
	for i, r := range rs.rules {
		switch r.Kind {
		case MatchExact:
			if id != r.Match {
				continue
			}
			return Resolution{ID: r.Replacement, Directory: r.Target == TargetDirectory, Rule: i}, true
		case MatchPrefix:
			if !docpath.HasSegmentPrefix(id, r.Match) {
				continue
			}
			if r.Target == TargetDirectory {
				return Resolution{ID: r.Replacement, Directory: true, Rule: i}, true
			}
			return Resolution{ID: r.Replacement + id[len(r.Match):], Rule: i}, true
		}
	}
	return Resolution{}, false
}

// SortMostSpecific returns a copy of rules reordered so that no rule comes
// after a rule whose match is part of its own. Unrelated rules keep their
// authored relative order.
func SortMostSpecific(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		pos := len(out)
		for i, placed := range out {
			if placed.Match != r.Match && placed.Match != "" && strings.Contains(r.Match, placed.Match) {
				pos = i
				break
			}
		}
		out = append(out, Rule{})
		copy(out[pos+1:], out[pos:])
		out[pos] = r
	}
	return out
}
