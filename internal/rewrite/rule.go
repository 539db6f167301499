// Package rewrite implements ordered, collision-aware path rewriting.
//
// Rules are applied in the order given, each one against the text already
// modified by the rules before it. Order is part of the contract: a rule
// whose match contains another rule's match must come first, otherwise the
// general rule consumes the text the specific one was written for.
package rewrite

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/docpath"
)

// MatchKind selects how a rule matches a navigation id. In free text both
// kinds are plain substring matches.
type MatchKind string

const (
	MatchExact  MatchKind = "exact"
	MatchPrefix MatchKind = "prefix"
)

// TargetKind tells whether a rule points at a single page or at a whole
// generated section.
type TargetKind string

const (
	TargetLeaf      TargetKind = "leaf"
	TargetDirectory TargetKind = "directory"
)

// Rule maps one path (or path prefix) to its new location.
type Rule struct {
	Match       string
	Replacement string
	Kind        MatchKind
	Target      TargetKind
}

func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s (%s, %s)", r.Match, r.Replacement, r.kind(), r.target())
}

func (r Rule) kind() MatchKind {
	if r.Kind == "" {
		return MatchExact
	}
	return r.Kind
}

func (r Rule) target() TargetKind {
	if r.Target == "" {
		return TargetLeaf
	}
	return r.Target
}

// Apply rewrites text with rules in order. Each rule replaces every
// non-overlapping occurrence of its Match, and the next rule runs on the
// result. No validation happens here: callers own the ordering.
func Apply(text string, rules []Rule) string {
	for _, r := range rules {
		if r.Match == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Match, r.Replacement)
	}
	return text
}

// matcher finds rule matches in text under the active boundary policy.
type matcher struct {
	segmentBoundaries bool
}

// indexes returns the start offsets of the non-overlapping matches of m in s.
func (mt matcher) indexes(s, m string) []int {
	var out []int
	for off := 0; off <= len(s)-len(m); {
		i := strings.Index(s[off:], m)
		if i < 0 {
			break
		}
		start := off + i
		if mt.segmentBoundaries && !onBoundary(s, start, m) {
			off = start + 1
			continue
		}
		out = append(out, start)
		off = start + len(m)
	}
	return out
}

// replace substitutes every match of m in s and reports how many fired.
func (mt matcher) replace(s, m, r string) (string, int) {
	if !mt.segmentBoundaries {
		n := strings.Count(s, m)
		if n == 0 {
			return s, 0
		}
		return strings.ReplaceAll(s, m, r), n
	}

	idx := mt.indexes(s, m)
	if len(idx) == 0 {
		return s, 0
	}
	var b strings.Builder
	b.Grow(len(s) + len(idx)*(len(r)-len(m)))
	last := 0
	for _, start := range idx {
		b.WriteString(s[last:start])
		b.WriteString(r)
		last = start + len(m)
	}
	b.WriteString(s[last:])
	return b.String(), len(idx)
}

// onBoundary reports whether the match of m at start is not glued to a
// neighbouring path segment on either side.
func onBoundary(s string, start int, m string) bool {
	if start > 0 && docpath.IsSegmentByte(m[0]) && docpath.IsSegmentByte(s[start-1]) {
		return false
	}
	end := start + len(m)
	if end < len(s) && docpath.IsSegmentByte(m[len(m)-1]) && docpath.IsSegmentByte(s[end]) {
		return false
	}
	return true
}
