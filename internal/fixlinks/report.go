package fixlinks

import (
	"fmt"
	"io"
	"sort"

	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// FileChange describes one rewritten file.
type FileChange struct {
	Path string
	Hits []rewrite.Hit
}

// Replacements is the number of replacements made in the file.
func (c FileChange) Replacements() int { return totalHits(c.Hits) }

// Residue is a link that still points into the old layout after rewriting.
type Residue struct {
	File        string
	Line        int
	Destination string
	Source      string
}

func (r Residue) String() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d: %s (old prefix %q)", r.File, r.Line, r.Destination, r.Source)
	}
	return fmt.Sprintf("%s: %s (old prefix %q)", r.File, r.Destination, r.Source)
}

// Report summarizes a run.
type Report struct {
	DryRun   bool
	Scanned  int
	Changed  []FileChange
	RuleHits []rewrite.Hit
	Residue  []Residue
}

func newReport(dryRun bool, results []*fileResult) *Report {
	r := &Report{DryRun: dryRun, Scanned: len(results)}
	byRule := map[int]*rewrite.Hit{}
	for _, res := range results {
		r.Residue = append(r.Residue, res.residue...)
		if !res.changed() {
			continue
		}
		r.Changed = append(r.Changed, FileChange{Path: res.path, Hits: res.hits})
		for _, h := range res.hits {
			if agg, ok := byRule[h.Rule]; ok {
				agg.Count += h.Count
				continue
			}
			hit := h
			byRule[h.Rule] = &hit
		}
	}
	for _, h := range byRule {
		r.RuleHits = append(r.RuleHits, *h)
	}
	sort.Slice(r.RuleHits, func(i, j int) bool { return r.RuleHits[i].Rule < r.RuleHits[j].Rule })
	return r
}

// HasChanges reports whether any file was (or in dry-run mode would be) rewritten.
func (r *Report) HasChanges() bool { return len(r.Changed) > 0 }

// Replacements is the total number of replacements across all files.
func (r *Report) Replacements() int { return totalHits(r.RuleHits) }

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	verb := "Rewrote"
	if r.DryRun {
		verb = "Would rewrite"
	}
	_, _ = fmt.Fprintf(w, "%s %d of %d files (%d replacements)\n", verb, len(r.Changed), r.Scanned, r.Replacements())
	for _, c := range r.Changed {
		_, _ = fmt.Fprintf(w, "  %s (%d)\n", c.Path, c.Replacements())
	}
	if len(r.RuleHits) > 0 {
		_, _ = fmt.Fprintln(w, "Rule hits:")
		for _, h := range r.RuleHits {
			_, _ = fmt.Fprintf(w, "  #%d %s: %d\n", h.Rule, h.Match, h.Count)
		}
	}
	if len(r.Residue) > 0 {
		_, _ = fmt.Fprintf(w, "%d links still use old paths:\n", len(r.Residue))
		for _, res := range r.Residue {
			_, _ = fmt.Fprintf(w, "  %s\n", res)
		}
	}
}
