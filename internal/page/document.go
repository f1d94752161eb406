package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Element IDs of the host page regions the viewer populates.
const (
	IDStories         = "stories"
	IDMeta            = "meta"
	IDHistorySelect   = "history-select"
	IDJargonSection   = "jargon-decoder"
	IDJargonContainer = "jargon-container"
	IDLabSection      = "lab-report"
	IDLabContainer    = "lab-container"
)

// RequiredIDs lists every element a host page must provide.
var RequiredIDs = []string{
	IDStories, IDMeta, IDHistorySelect,
	IDJargonSection, IDJargonContainer,
	IDLabSection, IDLabContainer,
}

//go:embed host.html
var defaultHost []byte

// DefaultHost returns the embedded host page.
func DefaultHost() []byte {
	out := make([]byte, len(defaultHost))
	copy(out, defaultHost)
	return out
}

// Document is a parsed host page. Mutations go through Do so renderers
// running on separate goroutines never touch the tree at the same time.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Parse reads a host page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing host page: %w", err)
	}
	return &Document{root: root}, nil
}

// New parses a host page from bytes. A nil or empty template selects the
// embedded default.
func New(tmpl []byte) (*Document, error) {
	if len(tmpl) == 0 {
		tmpl = defaultHost
	}
	return Parse(bytes.NewReader(tmpl))
}

// Validate reports the required element IDs missing from the page.
func (d *Document) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var missing []string
	for _, id := range RequiredIDs {
		if FindByID(d.root, id) == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("host page is missing elements: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Do runs fn with exclusive access to the tree.
func (d *Document) Do(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Element runs fn against the element with the given id. It returns an
// error without calling fn when the page lacks the element.
func (d *Document) Element(id string, fn func(el *html.Node)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := FindByID(d.root, id)
	if el == nil {
		return fmt.Errorf("host page has no element #%s", id)
	}
	fn(el)
	return nil
}

// Replace replaces the children of element id with nodes.
func (d *Document) Replace(id string, nodes ...*html.Node) error {
	return d.Element(id, func(el *html.Node) {
		ReplaceChildren(el, nodes...)
	})
}

// Append adds nodes to the end of element id.
func (d *Document) Append(id string, nodes ...*html.Node) error {
	return d.Element(id, func(el *html.Node) {
		for _, n := range nodes {
			el.AppendChild(n)
		}
	})
}

// SetVisible shows or hides element id through its inline display style.
func (d *Document) SetVisible(id string, visible bool) error {
	return d.Element(id, func(el *html.Node) {
		if visible {
			SetAttr(el, "style", "display:block")
		} else {
			SetAttr(el, "style", "display:none")
		}
	})
}

// SetAttr sets an attribute on element id.
func (d *Document) SetAttr(id, key, val string) error {
	return d.Element(id, func(el *html.Node) {
		SetAttr(el, key, val)
	})
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the document, returning an empty string on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
