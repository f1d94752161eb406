package page

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestDefaultHostHasRequiredElements(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)
	assert.NoError(t, doc.Validate())
}

func TestValidateReportsMissing(t *testing.T) {
	doc, err := New([]byte(`<html><body><div id="stories"></div></body></html>`))
	require.NoError(t, err)

	err = doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meta")
	assert.NotContains(t, err.Error(), "stories,")
}

func TestTextEscapes(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, doc.Replace(IDMeta, Text("Updated on <script>")))
	out := doc.String()
	assert.Contains(t, out, "Updated on &lt;script&gt;")
	assert.NotContains(t, out, "<script>")
}

func TestReplaceAndAppend(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, doc.Append(IDStories, El("div", Attrs("class", "story"), Text("one"))))
	require.NoError(t, doc.Append(IDStories, El("div", Attrs("class", "story"), Text("two"))))
	require.NoError(t, doc.Replace(IDStories, El("div", Attrs("class", "story"), Text("three"))))

	var cards []*html.Node
	doc.Do(func(root *html.Node) {
		cards = FindAll(FindByID(root, IDStories), ByClass("story"))
	})
	require.Len(t, cards, 1)
	assert.Equal(t, "three", TextContent(cards[0]))
}

func TestMissingElement(t *testing.T) {
	doc, err := New([]byte(`<html><body></body></html>`))
	require.NoError(t, err)

	called := false
	err = doc.Element(IDStories, func(*html.Node) { called = true })
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSetAttr(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, doc.SetAttr(IDHistorySelect, "onchange", "location.href=this.value"))
	assert.Contains(t, doc.String(), `onchange="location.href=this.value"`)
	assert.Error(t, doc.SetAttr("no-such-id", "x", "y"))
}

func TestDefaultHostIsCopy(t *testing.T) {
	a := DefaultHost()
	a[0] = 'X'
	assert.True(t, strings.HasPrefix(string(DefaultHost()), "<!DOCTYPE html>"))
}

func TestSetVisible(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, doc.SetVisible(IDLabSection, true))
	doc.Do(func(root *html.Node) {
		v, _ := Attr(FindByID(root, IDLabSection), "style")
		assert.Equal(t, "display:block", v)
	})

	require.NoError(t, doc.SetVisible(IDLabSection, false))
	doc.Do(func(root *html.Node) {
		v, _ := Attr(FindByID(root, IDLabSection), "style")
		assert.Equal(t, "display:none", v)
	})
}

func TestConcurrentRegions(t *testing.T) {
	doc, err := New(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []string{IDStories, IDJargonContainer, IDLabContainer} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = doc.Append(id, El("p", nil, Text(id)))
			}
		}(id)
	}
	wg.Wait()

	doc.Do(func(root *html.Node) {
		for _, id := range []string{IDStories, IDJargonContainer, IDLabContainer} {
			assert.Len(t, FindAll(FindByID(root, id), ByTag("p")), 50, id)
		}
	})
}

func TestHelpers(t *testing.T) {
	n := El("div", Attrs("class", "a b", "id", "x", "dangling"),
		El("span", nil, Text("hello ")),
		nil,
		Text("world"),
	)
	assert.True(t, HasClass(n, "b"))
	assert.False(t, HasClass(n, "c"))
	assert.Len(t, n.Attr, 2)
	assert.Equal(t, "hello world", TextContent(n))

	SetAttr(n, "id", "y")
	v, ok := Attr(n, "id")
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	assert.True(t, strings.HasPrefix(string(DefaultHost()), "<!DOCTYPE html>"))
}
