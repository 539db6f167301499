package rewrite

import "fmt"

// ConflictingRuleError reports a rule whose replacement overlaps the match
// of a rule in the same set, so rewriting already rewritten text could fire
// again. Overlap says how the two strings meet.
type ConflictingRuleError struct {
	Rule        int
	Replacement string
	Rematched   int
	Match       string
	Overlap     Overlap
}

func (e *ConflictingRuleError) Error() string {
	return fmt.Sprintf("rule %d: replacement %q %s the match %q of rule %d",
		e.Rule, e.Replacement, e.Overlap, e.Match, e.Rematched)
}

// RuleOrderError reports a general rule listed before a more specific rule
// whose match it is part of; the specific rule could never fire.
type RuleOrderError struct {
	General       int
	GeneralMatch  string
	Specific      int
	SpecificMatch string
}

func (e *RuleOrderError) Error() string {
	return fmt.Sprintf("rule %d (%q) shadows more specific rule %d (%q); list the specific rule first",
		e.General, e.GeneralMatch, e.Specific, e.SpecificMatch)
}

// InvalidRuleError reports a malformed rule.
type InvalidRuleError struct {
	Rule   int
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("rule %d: %s", e.Rule, e.Reason)
}
