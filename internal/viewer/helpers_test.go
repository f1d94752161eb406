package viewer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// fakeSource serves documents from memory. Unknown paths are 404s.
type fakeSource struct {
	mu   sync.Mutex
	docs map[string]string
	errs map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{docs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeSource) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, path)
	f.docs[path] = body
}

func (f *fakeSource) fail(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
}

func (f *fakeSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[p]; ok {
		return nil, err
	}
	if body, ok := f.docs[p]; ok {
		return []byte(body), nil
	}
	return nil, &fetch.StatusError{Path: p, StatusCode: 404}
}

// gatedSource blocks fetches of gated paths until their gate is closed.
type gatedSource struct {
	fetch.Source
	gates   map[string]chan struct{}
	started chan string
}

func (g *gatedSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if gate, ok := g.gates[p]; ok {
		g.started <- p
		<-gate
	}
	return g.Source.Fetch(ctx, p)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestViewer(t *testing.T, src fetch.Source, opts Options) *Viewer {
	t.Helper()
	doc, err := page.New(nil)
	require.NoError(t, err)
	opts.Logger = testLogger()
	return New(doc, src, opts)
}

// query runs fn against the rendered tree.
func query[T any](v *Viewer, fn func(root *html.Node) T) T {
	var out T
	v.Document().Do(func(root *html.Node) { out = fn(root) })
	return out
}

func elementText(v *Viewer, id string) string {
	return query(v, func(root *html.Node) string {
		el := page.FindByID(root, id)
		if el == nil {
			return ""
		}
		return page.TextContent(el)
	})
}

func cards(v *Viewer, id, class string) []*html.Node {
	return query(v, func(root *html.Node) []*html.Node {
		return page.FindAll(page.FindByID(root, id), page.ByClass(class))
	})
}

func headings(n *html.Node, tag string) []string {
	var out []string
	for _, h := range page.FindAll(n, page.ByTag(tag)) {
		out = append(out, page.TextContent(h))
	}
	return out
}

func visible(v *Viewer, id string) bool {
	return query(v, func(root *html.Node) bool {
		style, _ := page.Attr(page.FindByID(root, id), "style")
		return style != "display:none"
	})
}

func selectOptions(v *Viewer) []*html.Node {
	return query(v, func(root *html.Node) []*html.Node {
		return page.FindAll(page.FindByID(root, page.IDHistorySelect), page.ByTag("option"))
	})
}

func runLoad(v *Viewer) {
	v.Load(context.Background())
}
