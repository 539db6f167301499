// Package sidebar reads Docusaurus sidebar definitions exported as JSON or
// YAML and turns them into navigation trees.
//
// Items may be bare doc ids or typed objects:
//
//	"guides/overview"
//	{type: doc, id: guides/overview, label: Overview}
//	{type: category, label: Guides, collapsed: false, items: [...]}
//	{type: link, label: GitHub, href: https://github.com/zitadel}
//	{type: autogenerated, dirName: apis/resources/admin}
//
// An autogenerated item becomes a directory DocRef so directory rules can map
// it onto the destination section.
package sidebar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docmigrate/internal/nav"
)

// SchemaError reports an item the loader does not understand. Path locates
// the item, e.g. "guides[0].items[3]".
type SchemaError struct {
	Path   string
	Line   int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("sidebar %s (line %d): %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("sidebar %s: %s", e.Path, e.Reason)
}

// Names lists the sidebars defined in a document in authored order. A bare
// list has no names.
func Names(r io.Reader) ([]string, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	if doc.Kind != yaml.MappingNode {
		return nil, nil
	}
	names := make([]string, 0, len(doc.Content)/2)
	for i := 0; i < len(doc.Content); i += 2 {
		names = append(names, doc.Content[i].Value)
	}
	return names, nil
}

// Load parses one sidebar. The document is either a bare list of items or an
// object keyed by sidebar name; an empty name picks the first sidebar.
// The result is a root category labelled with the sidebar name.
func Load(r io.Reader, name string) (*nav.Category, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}

	items := doc
	if doc.Kind == yaml.MappingNode {
		items = nil
		for i := 0; i+1 < len(doc.Content); i += 2 {
			if name == "" || doc.Content[i].Value == name {
				name = doc.Content[i].Value
				items = doc.Content[i+1]
				break
			}
		}
		if items == nil {
			return nil, fmt.Errorf("sidebar %q not found", name)
		}
	}
	if items.Kind != yaml.SequenceNode {
		return nil, &SchemaError{Path: pathRoot(name), Line: items.Line, Reason: "expected a list of items"}
	}

	p := parser{}
	children, err := p.items(items, pathRoot(name))
	if err != nil {
		return nil, err
	}
	return &nav.Category{Label: name, Children: children}, nil
}

// LoadFile is Load on a file path.
func LoadFile(path, name string) (*nav.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	root, err := Load(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func pathRoot(name string) string {
	if name == "" {
		return "sidebar"
	}
	return name
}

func decode(r io.Reader) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty sidebar document")
		}
		return nil, fmt.Errorf("parse sidebar: %w", err)
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return doc.Content[0], nil
	}
	return &doc, nil
}

type parser struct{}

func (p parser) items(seq *yaml.Node, path string) ([]nav.Node, error) {
	out := make([]nav.Node, 0, len(seq.Content))
	for i, item := range seq.Content {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		n, err := p.item(item, itemPath)
		if err != nil {
			return nil, err
		}
		out = append(out, n...)
	}
	return out, nil
}

// item returns a slice because a category with a doc link contributes the
// linked page as its first child.
func (p parser) item(n *yaml.Node, path string) ([]nav.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		id := strings.TrimSpace(n.Value)
		if id == "" {
			return nil, &SchemaError{Path: path, Line: n.Line, Reason: "empty doc id"}
		}
		return []nav.Node{&nav.DocRef{ID: id}}, nil
	case yaml.MappingNode:
	default:
		return nil, &SchemaError{Path: path, Line: n.Line, Reason: "expected a doc id or an item object"}
	}

	fields := mapping(n)
	typ := fields.str("type")
	switch typ {
	case "doc", "ref":
		id := fields.str("id")
		if id == "" {
			return nil, &SchemaError{Path: path, Line: n.Line, Reason: typ + " item without id"}
		}
		return []nav.Node{&nav.DocRef{ID: id, Label: fields.str("label")}}, nil

	case "link":
		href := fields.str("href")
		if href == "" {
			return nil, &SchemaError{Path: path, Line: n.Line, Reason: "link item without href"}
		}
		return []nav.Node{&nav.ExternalLink{Label: fields.str("label"), URL: href}}, nil

	case "autogenerated":
		dir := fields.str("dirName")
		if dir == "" {
			return nil, &SchemaError{Path: path, Line: n.Line, Reason: "autogenerated item without dirName"}
		}
		return []nav.Node{&nav.DocRef{ID: dir, Directory: true}}, nil

	case "category":
		return p.category(fields, n, path)

	case "":
		return nil, &SchemaError{Path: path, Line: n.Line, Reason: "item without type"}
	default:
		return nil, &SchemaError{Path: path, Line: n.Line, Reason: fmt.Sprintf("unknown item type %q", typ)}
	}
}

func (p parser) category(fields fieldMap, n *yaml.Node, path string) ([]nav.Node, error) {
	label := fields.str("label")
	if label == "" {
		return nil, &SchemaError{Path: path, Line: n.Line, Reason: "category without label"}
	}
	cat := &nav.Category{Label: label}

	if c, ok := fields["collapsed"]; ok {
		var collapsed bool
		if err := c.Decode(&collapsed); err != nil {
			return nil, &SchemaError{Path: path + ".collapsed", Line: c.Line, Reason: "expected a boolean"}
		}
		cat.Collapsed = &collapsed
	}

	if link, ok := fields["link"]; ok && link.Kind == yaml.MappingNode {
		lf := mapping(link)
		// generated-index pages have no source document to carry over.
		if lf.str("type") == "doc" && lf.str("id") != "" {
			cat.Children = append(cat.Children, &nav.DocRef{ID: lf.str("id")})
		}
	}

	items, ok := fields["items"]
	if !ok {
		return []nav.Node{cat}, nil
	}
	if items.Kind != yaml.SequenceNode {
		return nil, &SchemaError{Path: path + ".items", Line: items.Line, Reason: "expected a list of items"}
	}
	children, err := p.items(items, path+".items")
	if err != nil {
		return nil, err
	}
	cat.Children = append(cat.Children, children...)
	return []nav.Node{cat}, nil
}

type fieldMap map[string]*yaml.Node

func mapping(n *yaml.Node) fieldMap {
	m := make(fieldMap, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m
}

func (m fieldMap) str(key string) string {
	v, ok := m[key]
	if !ok || v.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(v.Value)
}
