package markdown

import (
	"bytes"

	"golang.org/x/net/html"
)

var linkAttributes = map[string]bool{"href": true, "src": true, "to": true}

// htmlLinks tokenizes a raw HTML or JSX fragment and reports quoted link
// attributes. JSX expression attributes (href={...}) are not evaluated.
func htmlLinks(fragment []byte, line int) []Link {
	var out []Link
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a malformed fragment; either way nothing more to read.
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		for _, attr := range z.Token().Attr {
			if !linkAttributes[attr.Key] || attr.Val == "" || attr.Val[0] == '{' {
				continue
			}
			out = append(out, Link{Kind: LinkKindHTML, Destination: attr.Val, Line: line})
		}
	}
}
