package nav

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docmigrate/internal/docpath"
	"git.home.luguber.info/inful/docmigrate/internal/rewrite"
)

// Options tunes a transcoding run.
type Options struct {
	// ContentRoots are path roots already valid in the destination layout.
	// An id under one of them that no rule touches is kept silently.
	ContentRoots []string
	// RawIDs disables docpath.Normalize on ids before rule lookup.
	RawIDs bool
}

// ResolvedBy tells which step produced a DocRef's new id.
type ResolvedBy string

const (
	ResolvedByRule       ResolvedBy = "rule"
	ResolvedByPrefix     ResolvedBy = "prefix"
	ResolvedByIdentity   ResolvedBy = "identity"
	ResolvedByUnresolved ResolvedBy = "unresolved"
)

// UnresolvedReferenceWarning names a DocRef that no rule, prefix rule or
// content root accounted for. The node is kept with its original id.
type UnresolvedReferenceWarning struct {
	ID         string
	Breadcrumb []string
}

func (w UnresolvedReferenceWarning) Error() string {
	if len(w.Breadcrumb) == 0 {
		return fmt.Sprintf("unresolved reference %q", w.ID)
	}
	return fmt.Sprintf("unresolved reference %q (in %s)", w.ID, strings.Join(w.Breadcrumb, " > "))
}

// Stats counts how DocRefs were resolved.
type Stats struct {
	Counts
	ByRule     int
	ByPrefix   int
	Identity   int
	Unresolved int
	RuleHits   map[int]int
}

// Result is the transcoded tree plus everything worth reporting about it.
type Result struct {
	Tree        Node
	Diagnostics []UnresolvedReferenceWarning
	Stats       Stats
}

// Err joins the diagnostics into one error, or returns nil when there are none.
// Callers use it to fail a build on unresolved references.
func (r Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Transcode converts tree to the destination layout. Every DocRef id is
// resolved by, in order, the mapping rules, the longest prefix rule, and
// finally identity. The input is never modified and the output shares no
// memory with it. The run never fails: ids nothing accounts for are kept
// and reported in Result.Diagnostics.
func Transcode(tree Node, rules *rewrite.RuleSet, prefixes *rewrite.PrefixRuleSet, opts Options) Result {
	t := &transcoder{
		rules:    rules,
		prefixes: prefixes,
		opts:     opts,
		stats:    Stats{RuleHits: map[int]int{}},
	}
	out := t.node(tree, nil)
	t.stats.Counts = Count(out)
	return Result{Tree: out, Diagnostics: t.diags, Stats: t.stats}
}

type transcoder struct {
	rules    *rewrite.RuleSet
	prefixes *rewrite.PrefixRuleSet
	opts     Options
	diags    []UnresolvedReferenceWarning
	stats    Stats
}

func (t *transcoder) node(n Node, crumbs []string) Node {
	switch v := n.(type) {
	case *Category:
		c := &Category{Label: v.Label, Collapsed: cloneBool(v.Collapsed), Children: make([]Node, 0, len(v.Children))}
		inner := append(crumbs[:len(crumbs):len(crumbs)], v.Label)
		for _, child := range v.Children {
			c.Children = append(c.Children, t.node(child, inner))
		}
		return c
	case *DocRef:
		return t.docRef(v, crumbs)
	case *ExternalLink:
		l := *v
		return &l
	default:
		return nil
	}
}

func (t *transcoder) docRef(d *DocRef, crumbs []string) *DocRef {
	id := d.ID
	if !t.opts.RawIDs {
		id = docpath.Normalize(id)
	}

	if res, ok := t.rules.Resolve(id); ok {
		t.stats.ByRule++
		t.stats.RuleHits[res.Rule]++
		return &DocRef{ID: res.ID, Label: d.Label, Directory: res.Directory}
	}
	if newID, _, ok := t.prefixes.Resolve(id); ok {
		t.stats.ByPrefix++
		return &DocRef{ID: newID, Label: d.Label, Directory: d.Directory}
	}

	out := &DocRef{ID: d.ID, Label: d.Label, Directory: d.Directory}
	if docpath.HasAnyRoot(id, t.opts.ContentRoots) {
		t.stats.Identity++
		return out
	}
	t.stats.Unresolved++
	t.diags = append(t.diags, UnresolvedReferenceWarning{
		ID:         d.ID,
		Breadcrumb: append([]string(nil), crumbs...),
	})
	return out
}
