package viewer

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/brief"
	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// panel is an optional page section driven by its own document.
type panel struct {
	name      string
	section   string
	container string
}

var (
	jargonPanel = panel{name: "jargon", section: page.IDJargonSection, container: page.IDJargonContainer}
	labPanel    = panel{name: "lab", section: page.IDLabSection, container: page.IDLabContainer}
)

// FetchJargon fetches and decodes the jargon document.
func (v *Viewer) FetchJargon(ctx context.Context) (*brief.JargonSet, error) {
	data, err := v.src.Fetch(ctx, v.opts.JargonPath)
	if err != nil {
		return nil, err
	}
	return brief.DecodeJargon(data)
}

// FetchLab fetches and decodes the lab report document.
func (v *Viewer) FetchLab(ctx context.Context) (*brief.LabDigest, error) {
	data, err := v.src.Fetch(ctx, v.opts.LabPath)
	if err != nil {
		return nil, err
	}
	return brief.DecodeLab(data)
}

func (v *Viewer) loadJargon(ctx context.Context, logger *slog.Logger) {
	set, err := v.FetchJargon(ctx)
	if err != nil {
		logPanelError(logger, jargonPanel, v.opts.JargonPath, err)
	}
	active := err == nil && set.IsWeeklyActive

	var cards []*html.Node
	if active {
		for _, t := range set.Terms {
			cards = append(cards, jargonCard(t))
		}
	}
	if !v.apply(logger, jargonPanel, active, cards) || !active {
		return
	}

	err = v.doc.Element(jargonPanel.section, func(section *html.Node) {
		if title := page.FindByClass(section, "section-title"); title != nil {
			page.ReplaceChildren(title,
				page.Text("Jargon Decoder "),
				page.El("span", page.Attrs("class", "update-tag"), page.Text("Updated: "+set.LastUpdated)),
			)
		}
	})
	if err != nil {
		logger.Error("could not update jargon title", "error", err)
	}
}

func (v *Viewer) loadLab(ctx context.Context, logger *slog.Logger) {
	digest, err := v.FetchLab(ctx)
	if err != nil {
		logPanelError(logger, labPanel, v.opts.LabPath, err)
	}
	active := err == nil && len(digest.Papers) > 0

	var cards []*html.Node
	if active {
		for _, p := range digest.Papers {
			cards = append(cards, labCard(p))
		}
	}
	v.apply(logger, labPanel, active, cards)
}

// apply fills the panel container with cards and shows the section when
// active; otherwise the container is emptied and the section hidden so no
// stale cards remain. It reports whether the page held both elements.
func (v *Viewer) apply(logger *slog.Logger, p panel, active bool, cards []*html.Node) bool {
	if err := v.doc.Replace(p.container, cards...); err != nil {
		logger.Error("host page is missing panel elements", "panel", p.name, "error", err)
		return false
	}
	if err := v.doc.SetVisible(p.section, active); err != nil {
		logger.Error("host page is missing panel elements", "panel", p.name, "error", err)
		return false
	}
	logger.Debug("panel rendered", "panel", p.name, "active", active)
	return true
}

func logPanelError(logger *slog.Logger, p panel, path string, err error) {
	if fetch.IsNotFound(err) {
		logger.Debug("panel document absent", "panel", p.name, "path", path)
		return
	}
	logger.Info("panel document unavailable", "panel", p.name, "path", path, "error", err)
}

func jargonCard(t brief.JargonTerm) *html.Node {
	return page.El("div", page.Attrs("class", "jargon-card"),
		page.El("h4", nil, page.Text(t.Term)),
		page.El("p", nil,
			page.El("strong", nil, page.Text("Definition:")),
			page.Text(" "+t.Definition),
		),
		page.El("p", nil,
			page.El("em", nil, page.Text("Analogy: "+t.Analogy)),
		),
	)
}

func labCard(p brief.Paper) *html.Node {
	meta := func(label, value string) *html.Node {
		return page.El("p", nil,
			page.El("strong", nil, page.Text(label+":")),
			page.Text(" "+value),
		)
	}
	return page.El("div", page.Attrs("class", "lab-card"),
		page.El("h4", nil, page.Text(p.Title)),
		page.El("div", page.Attrs("class", "lab-meta"),
			meta("Innovation", p.Innovation),
			meta("Benchmarks", p.Benchmarks),
			meta("Use Case", p.UseCase),
		),
		page.El("a", page.Attrs("href", safeHref(p.URL), "target", "_blank", "rel", "noopener", "class", "lab-link"),
			page.Text("Read Full Paper →")),
	)
}
