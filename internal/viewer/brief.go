package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/brief"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// FetchBrief fetches and validates the brief at path.
func (v *Viewer) FetchBrief(ctx context.Context, path string) (*brief.Brief, error) {
	data, err := v.src.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	return brief.DecodeBrief(data)
}

// renderBrief fetches path and rewrites the story list and status line. A
// failure replaces the story list with an error message. It returns false
// when a newer render started before this one finished.
func (v *Viewer) renderBrief(ctx context.Context, path string, logger *slog.Logger) bool {
	token := v.seq.Add(1)
	logger.Debug("fetching brief", "path", path)

	b, fetchErr := v.FetchBrief(ctx, path)

	applied := false
	v.doc.Do(func(root *html.Node) {
		if v.seq.Load() != token {
			return
		}
		applied = true
		v.shown.Store(&briefResult{brief: b, err: fetchErr})

		stories := page.FindByID(root, page.IDStories)
		if stories == nil {
			logger.Error("host page has no story container", "id", page.IDStories)
			return
		}

		if fetchErr != nil {
			page.ReplaceChildren(stories, errorMessage(fetchErr))
			return
		}

		if meta := page.FindByID(root, page.IDMeta); meta != nil {
			page.ReplaceChildren(meta, page.Text("Updated on "+b.Date))
		} else {
			logger.Warn("host page has no status line", "id", page.IDMeta)
		}

		cards := make([]*html.Node, 0, len(b.TopStories))
		for _, s := range b.TopStories {
			cards = append(cards, v.storyCard(s))
		}
		page.ReplaceChildren(stories, cards...)
	})

	switch {
	case !applied:
		logger.Debug("discarding stale brief response", "path", path)
	case fetchErr != nil:
		logger.Error("could not load brief", "path", path, "error", fetchErr)
	default:
		logger.Info("brief rendered", "path", path, "date", b.Date, "stories", len(b.TopStories))
	}
	return applied
}

func (v *Viewer) storyCard(s brief.Story) *html.Node {
	card := page.El("div", page.Attrs("class", "story"),
		page.El("h2", nil, page.Text(fmt.Sprintf("%d. %s", s.Rank, s.Title))),
		page.El("h3", nil, page.Text("Summary")),
		v.block(s.Summary),
	)

	for _, d := range s.Details() {
		card.AppendChild(page.El("h3", nil, page.Text(d.Label)))
		card.AppendChild(v.block(d.Text))
	}

	card.AppendChild(page.El("p", page.Attrs("class", "source"),
		page.Text("Source: "),
		page.El("a", page.Attrs("href", safeHref(s.URL), "target", "_blank", "rel", "noopener"), page.Text(s.Source)),
	))
	return card
}

// block renders a body paragraph, through markdown when enabled.
func (v *Viewer) block(text string) *html.Node {
	if v.md != nil {
		nodes, err := renderMarkdown(v.md, text)
		if err == nil {
			return page.El("div", page.Attrs("class", "md"), nodes...)
		}
		v.logger.Warn("markdown rendering failed, using plain text", "error", err)
	}
	return page.El("p", nil, page.Text(text))
}

func errorMessage(err error) *html.Node {
	return page.El("p", page.Attrs("class", "error"),
		page.Text(fmt.Sprintf("Error: Could not load the brief. (%s)", err.Error())))
}

// safeHref keeps http(s) and relative links and neutralises anything else,
// such as javascript: URLs.
func safeHref(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "#"
	}
	switch u.Scheme {
	case "", "http", "https":
		return raw
	default:
		return "#"
	}
}
