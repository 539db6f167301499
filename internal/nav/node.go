// Package nav models a documentation site's navigation tree and converts it
// from one content layout to another.
package nav

// Node is one element of a navigation tree. The set of variants is closed:
// *Category, *DocRef and *ExternalLink.
type Node interface {
	node()
}

// Category groups child nodes under a label. Child order is render order.
type Category struct {
	Label     string
	Children  []Node
	Collapsed *bool
}

// DocRef points at a content page, or at a generated section when Directory is set.
type DocRef struct {
	ID        string
	Label     string
	Directory bool
}

// ExternalLink is an opaque link; it is never rewritten.
type ExternalLink struct {
	Label string
	URL   string
}

func (*Category) node()     {}
func (*DocRef) node()       {}
func (*ExternalLink) node() {}

// Clone returns a deep copy of n.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Category:
		c := &Category{Label: v.Label, Collapsed: cloneBool(v.Collapsed)}
		if v.Children != nil {
			c.Children = make([]Node, len(v.Children))
			for i, child := range v.Children {
				c.Children[i] = Clone(child)
			}
		}
		return c
	case *DocRef:
		d := *v
		return &d
	case *ExternalLink:
		l := *v
		return &l
	default:
		return nil
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Equal reports whether a and b describe the same tree.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Category:
		y, ok := b.(*Category)
		if !ok || x.Label != y.Label || len(x.Children) != len(y.Children) {
			return false
		}
		if (x.Collapsed == nil) != (y.Collapsed == nil) || (x.Collapsed != nil && *x.Collapsed != *y.Collapsed) {
			return false
		}
		for i := range x.Children {
			if !Equal(x.Children[i], y.Children[i]) {
				return false
			}
		}
		return true
	case *DocRef:
		y, ok := b.(*DocRef)
		return ok && *x == *y
	case *ExternalLink:
		y, ok := b.(*ExternalLink)
		return ok && *x == *y
	default:
		return a == nil && b == nil
	}
}

// WalkFunc is called for every node with the labels of its enclosing categories.
type WalkFunc func(n Node, breadcrumb []string) error

// Walk visits n and its descendants depth first, parents before children.
// The breadcrumb slice is reused between calls; copy it to keep it.
func Walk(n Node, fn WalkFunc) error {
	return walk(n, nil, fn)
}

func walk(n Node, crumbs []string, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	if err := fn(n, crumbs); err != nil {
		return err
	}
	c, ok := n.(*Category)
	if !ok {
		return nil
	}
	crumbs = append(crumbs, c.Label)
	for _, child := range c.Children {
		if err := walk(child, crumbs, fn); err != nil {
			return err
		}
	}
	return nil
}

// Counts tallies the variants in a tree.
type Counts struct {
	Categories int
	Docs       int
	Links      int
}

// Count returns the number of nodes of each variant under n, n included.
func Count(n Node) Counts {
	var c Counts
	_ = Walk(n, func(n Node, _ []string) error {
		switch n.(type) {
		case *Category:
			c.Categories++
		case *DocRef:
			c.Docs++
		case *ExternalLink:
			c.Links++
		}
		return nil
	})
	return c
}
