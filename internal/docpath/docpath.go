// Package docpath holds the content-path helpers shared by the rewriter,
// the navigation transcoder and the loaders.
//
// A content path is a slash separated logical identifier ("guides/start/quickstart").
// Nothing here touches the filesystem.
package docpath

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var docExtensions = []string{".mdx", ".markdown", ".md"}

// Normalize returns the canonical form of a content path: NFC, trimmed,
// forward slashes, no empty or "." segments. A leading "/" and a trailing
// "/" are kept since both are meaningful to site routers.
func Normalize(p string) string {
	p = strings.TrimSpace(norm.NFC.String(p))
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")

	leading := strings.HasPrefix(p, "/")
	trailing := strings.HasSuffix(p, "/") && len(p) > 1

	parts := strings.Split(p, "/")
	kept := parts[:0]
	for i, part := range parts {
		if part == "" {
			continue
		}
		// "./x" -> "x", but a lone "." stays meaningful only as a relative root.
		if part == "." && (i > 0 || len(parts) > 1) {
			continue
		}
		kept = append(kept, part)
	}

	out := strings.Join(kept, "/")
	if leading {
		out = "/" + out
	}
	if trailing && out != "/" {
		out += "/"
	}
	return out
}

// StripDocExtension removes a trailing .md, .mdx or .markdown extension.
func StripDocExtension(p string) string {
	lower := strings.ToLower(p)
	for _, ext := range docExtensions {
		if strings.HasSuffix(lower, ext) {
			return p[:len(p)-len(ext)]
		}
	}
	return p
}

// HasDocExtension reports whether p names a markdown-like document.
func HasDocExtension(p string) bool {
	return StripDocExtension(p) != p
}

// IsSegmentByte reports whether b can appear inside a path segment.
// A match followed by such a byte ends mid-segment.
func IsSegmentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-', b == '_', b == '.':
		return true
	}
	return false
}

// HasSegmentPrefix reports whether prefix is a prefix of p that ends on a
// segment boundary: "apis/foo" is a segment prefix of "apis/foo/bar" but not
// of "apis/foobar". A prefix ending in "/" always ends on a boundary.
func HasSegmentPrefix(p, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(p, prefix) {
		return false
	}
	if len(p) == len(prefix) || strings.HasSuffix(prefix, "/") {
		return true
	}
	return !IsSegmentByte(p[len(prefix)])
}

// HasAnyRoot reports whether p starts with one of roots. Roots are compared
// on normalized forms; an empty roots list matches nothing.
func HasAnyRoot(p string, roots []string) bool {
	np := Normalize(p)
	for _, root := range roots {
		nr := Normalize(root)
		if nr == "" {
			continue
		}
		if np == strings.TrimSuffix(nr, "/") || strings.HasPrefix(np, ensureSlash(nr)) {
			return true
		}
	}
	return false
}

// Join concatenates a prefix and a remainder, inserting or collapsing the
// slash between them. An empty prefix returns rest unchanged.
func Join(prefix, rest string) string {
	switch {
	case prefix == "":
		return rest
	case rest == "":
		return prefix
	case strings.HasSuffix(prefix, "/") && strings.HasPrefix(rest, "/"):
		return prefix + rest[1:]
	case strings.HasSuffix(prefix, "/") || strings.HasPrefix(rest, "/"):
		return prefix + rest
	default:
		return prefix + "/" + rest
	}
}

func ensureSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
