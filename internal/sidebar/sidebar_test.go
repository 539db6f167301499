package sidebar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmigrate/internal/nav"
)

const guidesJSON = `{
  "guides": [
    "guides/overview",
    {
      "type": "category",
      "label": "Get Started",
      "collapsed": false,
      "link": {"type": "doc", "id": "guides/start/index"},
      "items": [
        "guides/start/quickstart",
        {"type": "doc", "id": "concepts/structure/instance", "label": "Instance"},
        {"type": "link", "label": "Vanilla-JS", "href": "https://github.com/zitadel/zitadel-vanilla-js"}
      ]
    },
    {"type": "autogenerated", "dirName": "apis/resources/admin"}
  ],
  "apis": ["apis/introduction"]
}`

func TestLoad_JSON(t *testing.T) {
	root, err := Load(strings.NewReader(guidesJSON), "guides")
	require.NoError(t, err)

	collapsed := false
	want := &nav.Category{Label: "guides", Children: []nav.Node{
		&nav.DocRef{ID: "guides/overview"},
		&nav.Category{Label: "Get Started", Collapsed: &collapsed, Children: []nav.Node{
			&nav.DocRef{ID: "guides/start/index"},
			&nav.DocRef{ID: "guides/start/quickstart"},
			&nav.DocRef{ID: "concepts/structure/instance", Label: "Instance"},
			&nav.ExternalLink{Label: "Vanilla-JS", URL: "https://github.com/zitadel/zitadel-vanilla-js"},
		}},
		&nav.DocRef{ID: "apis/resources/admin", Directory: true},
	}}
	assert.True(t, nav.Equal(want, root), "got %#v", root)
}

func TestLoad_PicksNamedOrFirstSidebar(t *testing.T) {
	root, err := Load(strings.NewReader(guidesJSON), "apis")
	require.NoError(t, err)
	assert.Equal(t, "apis", root.Label)
	require.Len(t, root.Children, 1)

	root, err = Load(strings.NewReader(guidesJSON), "")
	require.NoError(t, err)
	assert.Equal(t, "guides", root.Label)

	_, err = Load(strings.NewReader(guidesJSON), "missing")
	require.ErrorContains(t, err, `"missing" not found`)
}

func TestLoad_YAMLBareList(t *testing.T) {
	src := `
- guides/overview
- type: category
  label: APIs
  items:
    - type: ref
      id: apis/introduction
`
	root, err := Load(strings.NewReader(src), "")
	require.NoError(t, err)
	assert.Equal(t, "", root.Label)
	assert.Equal(t, nav.Counts{Categories: 2, Docs: 2}, nav.Count(root))
	cat := root.Children[1].(*nav.Category)
	assert.Nil(t, cat.Collapsed)
	assert.Equal(t, "apis/introduction", cat.Children[0].(*nav.DocRef).ID)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
		msg  string
	}{
		{"unknown type", `{"s": [{"type": "html", "value": "<b>"}]}`, "s[0]", `unknown item type "html"`},
		{"missing type", `{"s": [{"id": "x"}]}`, "s[0]", "item without type"},
		{"doc without id", `{"s": [{"type": "doc"}]}`, "s[0]", "doc item without id"},
		{"nested", `{"s": ["a", {"type": "category", "label": "C", "items": [{"type": "link"}]}]}`, "s[1].items[0]", "link item without href"},
		{"category label", `{"s": [{"type": "category", "items": []}]}`, "s[0]", "category without label"},
		{"collapsed type", `{"s": [{"type": "category", "label": "C", "collapsed": "maybe"}]}`, "s[0].collapsed", "expected a boolean"},
		{"not a list", `{"s": {"type": "doc"}}`, "s", "expected a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src), "")
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.path, se.Path)
			assert.Contains(t, se.Reason, tt.msg)
		})
	}
}

func TestLoad_EmptyAndMalformed(t *testing.T) {
	_, err := Load(strings.NewReader(""), "")
	require.ErrorContains(t, err, "empty sidebar")

	_, err = Load(strings.NewReader(`{"s": [`), "")
	require.ErrorContains(t, err, "parse sidebar")
}

func TestNames(t *testing.T) {
	names, err := Names(strings.NewReader(guidesJSON))
	require.NoError(t, err)
	assert.Equal(t, []string{"guides", "apis"}, names)

	names, err = Names(strings.NewReader(`["a"]`))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidebars.json")
	require.NoError(t, os.WriteFile(path, []byte(guidesJSON), 0o600))

	root, err := LoadFile(path, "apis")
	require.NoError(t, err)
	assert.Equal(t, "apis", root.Label)

	_, err = LoadFile(filepath.Join(dir, "nope.json"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
