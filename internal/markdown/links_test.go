package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks_InlineLink(t *testing.T) {
	links, err := ExtractLinks([]byte("Intro\n\nSee [API](api.md) for details."), Options{})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
	require.Equal(t, 3, links[0].Line)
}

func TestExtractLinks_ImageLink(t *testing.T) {
	links, err := ExtractLinks([]byte("![Diagram](diagram.png)"), Options{})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindImage, links[0].Kind)
	require.Equal(t, "diagram.png", links[0].Destination)
}

func TestExtractLinks_AutoLink(t *testing.T) {
	links, err := ExtractLinks([]byte("<https://example.com/path>"), Options{})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, LinkKindAuto, links[0].Kind)
	require.Equal(t, "https://example.com/path", links[0].Destination)
}

func TestExtractLinks_ReferenceLinkUsageAndDefinition(t *testing.T) {
	src := []byte("See [API][ref].\n\n[ref]: api.md\n")
	links, err := ExtractLinks(src, Options{})
	require.NoError(t, err)

	require.Len(t, links, 2)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
	require.Equal(t, LinkKindReferenceDefinition, links[1].Kind)
	require.Equal(t, "api.md", links[1].Destination)
}

func TestExtractLinks_SkipsInlineCodeAndCodeBlocks(t *testing.T) {
	src := []byte("" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Real: [OK](./real.md)\n")

	links, err := ExtractLinks(src, Options{})
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Destination)
}

func TestExtractLinks_HTMLAndJSX(t *testing.T) {
	src := []byte("" +
		"# Title\n" +
		"\n" +
		"<Card href=\"/apis/resources/admin\" title=\"Admin\" />\n" +
		"\n" +
		"Inline <a href=\"/guides/start\">start</a> and <Link to={base} />.\n")

	links, err := ExtractLinks(src, Options{})
	require.NoError(t, err)
	assert.Empty(t, links)

	links, err = ExtractLinks(src, Options{HTML: true})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, Link{Kind: LinkKindHTML, Destination: "/apis/resources/admin", Line: 3}, links[0])
	assert.Equal(t, Link{Kind: LinkKindHTML, Destination: "/guides/start", Line: 5}, links[1])
}

func TestExtractLinks_MultiLineHTMLBlock(t *testing.T) {
	src := []byte("" +
		"Intro\n" +
		"\n" +
		"<div>\n" +
		"  <a href=\"/apis/resources/auth\">auth</a>\n" +
		"  <img src=\"/img/flow.png\" />\n" +
		"</div>\n")

	links, err := ExtractLinks(src, Options{HTML: true})
	require.NoError(t, err)
	assert.Equal(t, []Link{
		{Kind: LinkKindHTML, Destination: "/apis/resources/auth", Line: 3},
		{Kind: LinkKindHTML, Destination: "/img/flow.png", Line: 3},
	}, links)
}

func TestBody(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		body    string
		skipped int
	}{
		{"none", "# Title\n", "# Title\n", 0},
		{"yaml", "---\ntitle: X\n---\n# Title\n", "# Title\n", 3},
		{"empty block", "---\n---\nbody\n", "body\n", 2},
		{"crlf", "---\r\ntitle: X\r\n---\r\nbody", "body", 3},
		{"unterminated", "---\ntitle: X\n", "---\ntitle: X\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, skipped := Body([]byte(tt.in))
			assert.Equal(t, tt.body, string(body))
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}
