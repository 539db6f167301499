// Package meta renders navigation trees as Fumadocs meta.json files.
package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docmigrate/internal/nav"
)

// RestMarker prefixes a folder entry that Fumadocs expands into every page
// below that folder.
const RestMarker = "..."

// Options controls the rendered shape.
type Options struct {
	// Root marks the file as a navigation root ("root": true).
	Root bool
	// Title is written at the top level when set.
	Title string
	// ExpandDirectories renders directory DocRefs as "...path" so Fumadocs
	// lists the folder's pages in place.
	ExpandDirectories bool
}

// File is the top level of a meta.json document.
type File struct {
	Title string `json:"title,omitempty"`
	Root  bool   `json:"root,omitempty"`
	Pages []any  `json:"pages"`
}

// Folder is an inline group of pages.
type Folder struct {
	Title string `json:"title"`
	Pages []any  `json:"pages"`
}

// Link is a titled entry pointing at a page or an external URL.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Build converts tree into a File. A root category contributes its children
// as the top-level pages; any other node becomes the single page.
func Build(tree nav.Node, opts Options) File {
	f := File{Title: opts.Title, Root: opts.Root, Pages: []any{}}
	if root, ok := tree.(*nav.Category); ok {
		f.Pages = pages(root.Children, opts)
	} else if tree != nil {
		f.Pages = append(f.Pages, page(tree, opts))
	}
	return f
}

func pages(nodes []nav.Node, opts Options) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if p := page(n, opts); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func page(n nav.Node, opts Options) any {
	switch v := n.(type) {
	case *nav.Category:
		return Folder{Title: v.Label, Pages: pages(v.Children, opts)}
	case *nav.DocRef:
		id := v.ID
		if v.Directory && opts.ExpandDirectories {
			id = RestMarker + id
		}
		if v.Label == "" {
			return id
		}
		return Link{Title: v.Label, URL: id}
	case *nav.ExternalLink:
		title := v.Label
		if title == "" {
			title = v.URL
		}
		return Link{Title: title, URL: v.URL}
	default:
		return nil
	}
}

// Marshal renders tree as indented JSON with a trailing newline. HTML
// characters are left unescaped so labels like "Mobile & Native" stay readable.
func Marshal(tree nav.Node, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(tree, opts)); err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders tree to path through a temporary file and rename. An
// existing file with identical content is left alone and changed is false.
func WriteFile(path string, tree nav.Node, opts Options) (changed bool, err error) {
	data, err := Marshal(tree, opts)
	if err != nil {
		return false, err
	}
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure meta dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, fmt.Errorf("write temp meta: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("atomic rename meta: %w", err)
	}
	return true, nil
}
