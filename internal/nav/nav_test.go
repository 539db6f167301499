package nav

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func sampleTree() *Category {
	return &Category{
		Label:     "Docs",
		Collapsed: boolPtr(true),
		Children: []Node{
			&DocRef{ID: "guides/start/quickstart", Label: "Quickstart"},
			&Category{Label: "APIs", Children: []Node{
				&DocRef{ID: "apis/introduction"},
				&ExternalLink{Label: "Status", URL: "https://status.example.com"},
			}},
		},
	}
}

func TestClone_SharesNothing(t *testing.T) {
	in := sampleTree()
	out, ok := Clone(in).(*Category)
	require.True(t, ok)
	require.True(t, Equal(in, out))

	out.Label = "changed"
	*out.Collapsed = false
	out.Children[0].(*DocRef).ID = "x"
	out.Children[1].(*Category).Children[1].(*ExternalLink).URL = "y"

	assert.Equal(t, "Docs", in.Label)
	assert.True(t, *in.Collapsed)
	assert.Equal(t, "guides/start/quickstart", in.Children[0].(*DocRef).ID)
	assert.Equal(t, "https://status.example.com", in.Children[1].(*Category).Children[1].(*ExternalLink).URL)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(sampleTree(), sampleTree()))
	assert.False(t, Equal(sampleTree(), nil))
	assert.False(t, Equal(&DocRef{ID: "a"}, &DocRef{ID: "a", Directory: true}))
	assert.False(t, Equal(&DocRef{ID: "a"}, &ExternalLink{URL: "a"}))

	a, b := sampleTree(), sampleTree()
	b.Collapsed = nil
	assert.False(t, Equal(a, b))

	b = sampleTree()
	b.Children = b.Children[:1]
	assert.False(t, Equal(a, b))
}

func TestWalk_BreadcrumbsAndOrder(t *testing.T) {
	type visit struct {
		kind  string
		crumb string
	}
	var got []visit
	err := Walk(sampleTree(), func(n Node, crumbs []string) error {
		v := visit{crumb: join(crumbs)}
		switch x := n.(type) {
		case *Category:
			v.kind = "cat:" + x.Label
		case *DocRef:
			v.kind = "doc:" + x.ID
		case *ExternalLink:
			v.kind = "link:" + x.URL
		}
		got = append(got, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []visit{
		{"cat:Docs", ""},
		{"doc:guides/start/quickstart", "Docs"},
		{"cat:APIs", "Docs"},
		{"doc:apis/introduction", "Docs/APIs"},
		{"link:https://status.example.com", "Docs/APIs"},
	}, got)
}

func TestWalk_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk(sampleTree(), func(n Node, _ []string) error {
		visited++
		if _, ok := n.(*DocRef); ok {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestCount(t *testing.T) {
	assert.Equal(t, Counts{Categories: 2, Docs: 2, Links: 1}, Count(sampleTree()))
	assert.Equal(t, Counts{}, Count(nil))
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
