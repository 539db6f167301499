package rewrite

import (
	"errors"
	"fmt"
	"strings"
)

// PrefixRule is the structural fallback for ids no mapping rule covers:
// a leading Source is swapped for Dest and the rest of the id is kept.
type PrefixRule struct {
	Source string
	Dest   string
}

// PrefixRuleSet is a validated, ordered list of prefix rules.
type PrefixRuleSet struct {
	rules []PrefixRule
}

// NewPrefixRuleSet validates ordering (most specific first) and rejects
// empty or duplicate sources.
func NewPrefixRuleSet(rules []PrefixRule) (*PrefixRuleSet, error) {
	var errs []error
	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		if r.Source == "" {
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: "empty prefix source"})
			continue
		}
		if prev, dup := seen[r.Source]; dup {
			errs = append(errs, &InvalidRuleError{Rule: i, Reason: fmt.Sprintf("duplicate prefix source %q (first used by rule %d)", r.Source, prev)})
			continue
		}
		seen[r.Source] = i
		for j := 0; j < i; j++ {
			general := rules[j].Source
			if general != "" && general != r.Source && strings.HasPrefix(r.Source, general) {
				errs = append(errs, &RuleOrderError{General: j, GeneralMatch: general, Specific: i, SpecificMatch: r.Source})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &PrefixRuleSet{rules: append([]PrefixRule(nil), rules...)}, nil
}

// Len returns the number of prefix rules.
func (ps *PrefixRuleSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.rules)
}

// Rules returns a copy of the rules in order.
func (ps *PrefixRuleSet) Rules() []PrefixRule {
	if ps == nil {
		return nil
	}
	return append([]PrefixRule(nil), ps.rules...)
}

// Resolve rewrites id with the longest matching source. The index of the
// rule used is returned alongside the new id.
func (ps *PrefixRuleSet) Resolve(id string) (string, int, bool) {
	if ps == nil {
		return "", -1, false
	}
	best := -1
	for i, r := range ps.rules {
		if !strings.HasPrefix(id, r.Source) {
			continue
		}
		if best < 0 || len(r.Source) > len(ps.rules[best].Source) {
			best = i
		}
	}
	if best < 0 {
		return "", -1, false
	}
	r := ps.rules[best]
	return r.Dest + id[len(r.Source):], best, true
}

// Sources lists the source prefixes, used to spot leftover old paths.
func (ps *PrefixRuleSet) Sources() []string {
	if ps == nil {
		return nil
	}
	out := make([]string, len(ps.rules))
	for i, r := range ps.rules {
		out[i] = r.Source
	}
	return out
}
