package rewrite

import "strings"

// Overlap describes how a replacement meets a match.
type Overlap int

const (
	NoOverlap Overlap = iota
	// ContainsMatch: the match occurs inside the replacement.
	ContainsMatch
	// InsideMatch: the replacement occurs inside the match.
	InsideMatch
	// EndsIntoMatch: the replacement ends with the start of the match.
	EndsIntoMatch
	// StartsFromMatch: the replacement starts with the end of the match.
	StartsFromMatch
)

func (o Overlap) String() string {
	switch o {
	case ContainsMatch:
		return "contains"
	case InsideMatch:
		return "is part of"
	case EndsIntoMatch:
		return "ends with the start of"
	case StartsFromMatch:
		return "starts with the end of"
	default:
		return "does not overlap"
	}
}

// overlapOf reports whether replacement and match share any text that a
// later pass could stitch into a new occurrence of match.
func overlapOf(replacement, match string) Overlap {
	switch {
	case strings.Contains(replacement, match):
		return ContainsMatch
	case strings.Contains(match, replacement):
		return InsideMatch
	}
	for n := min(len(replacement), len(match)) - 1; n > 0; n-- {
		if replacement[len(replacement)-n:] == match[:n] {
			return EndsIntoMatch
		}
		if replacement[:n] == match[len(match)-n:] {
			return StartsFromMatch
		}
	}
	return NoOverlap
}
