package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks parses a Markdown body and extracts link-like constructs.
//
// This is an analysis API; it does not attempt to re-render Markdown.
func ExtractLinks(body []byte, opts Options) ([]Link, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body)), Line: lineOf(body, node)})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Line: lineOf(body, node)})
		case *gmast.Link:
			// Goldmark resolves reference-style links to a Link node with a Destination.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Line: lineOf(body, node)})
		case *gmast.RawHTML:
			if opts.HTML {
				links = append(links, htmlLinks(segmentsText(body, node.Segments), lineAt(body, firstStart(node.Segments)))...)
			}
		case *gmast.HTMLBlock:
			if opts.HTML {
				links = append(links, htmlLinks(segmentsText(body, node.Lines()), lineAt(body, firstStart(node.Lines())))...)
			}
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions are stored in the parse context (not represented as AST nodes).
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}

	return links, nil
}

// Body returns content without a leading YAML frontmatter block and the
// number of lines skipped. Content with an unterminated block is returned whole.
func Body(content []byte) ([]byte, int) {
	nl := []byte("\n")
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = []byte("\r\n")
	} else if !bytes.HasPrefix(content, []byte("---\n")) {
		return content, 0
	}

	start := 3 + len(nl)
	closing := append(append([]byte{}, nl...), "---"...)
	closing = append(closing, nl...)
	if bytes.HasPrefix(content[start:], closing[len(nl):]) {
		end := start + len(closing) - len(nl)
		return content[end:], bytes.Count(content[:end], nl)
	}
	idx := bytes.Index(content[start:], closing)
	if idx < 0 {
		return content, 0
	}
	end := start + idx + len(closing)
	return content[end:], bytes.Count(content[:end], nl)
}

// lineOf finds the first text segment under n and returns its line.
func lineOf(source []byte, n gmast.Node) int {
	var line int
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			line = lineAt(source, t.Segment.Start)
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return line
}

func lineAt(source []byte, offset int) int {
	if offset < 0 || offset > len(source) {
		return 0
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

func firstStart(segs *text.Segments) int {
	if segs == nil || segs.Len() == 0 {
		return -1
	}
	return segs.At(0).Start
}

func segmentsText(source []byte, segs *text.Segments) []byte {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}
