package markdown

// Options controls how Markdown is parsed for link analysis.
type Options struct {
	// HTML also reports href and src attributes found in raw HTML and JSX
	// tags, which MDX pages use for cards and custom link components.
	HTML bool
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
	LinkKindHTML                LinkKind = "html"
)

// Link is one link-like construct. Line is 1-based relative to the body
// passed in, or 0 when the parser keeps no position for the construct.
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
}
