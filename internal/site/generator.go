package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
	"github.com/ziadkadry99/dailybrief/internal/progress"
	"github.com/ziadkadry99/dailybrief/internal/viewer"
)

// IndexPage is the file holding the latest brief.
const IndexPage = "index.html"

// PageName returns the file holding the archived brief for date.
func PageName(date string) string {
	return "brief_" + date + ".html"
}

// SiteGenerator pre-renders the brief viewer into a static HTML site: one
// page for the latest brief and one per archived date.
type SiteGenerator struct {
	Source    fetch.Source
	OutputDir string
	// Template is the host page. Empty uses the embedded default.
	Template []byte
	// Options carries document paths and presentation settings. Source,
	// Selected and ArchiveValue are set per page.
	Options        viewer.Options
	MaxConcurrency int
	Reporter       progress.Reporter
	Logger         *slog.Logger
}

// NewSiteGenerator creates a SiteGenerator writing to outputDir.
func NewSiteGenerator(src fetch.Source, outputDir string, opts viewer.Options) *SiteGenerator {
	return &SiteGenerator{
		Source:         src,
		OutputDir:      outputDir,
		Options:        opts,
		MaxConcurrency: 5,
	}
}

// sitePage is one file to render.
type sitePage struct {
	name   string
	source string
}

// Generate builds the full static site and the story search index. Returns
// the number of pages generated.
func (g *SiteGenerator) Generate(ctx context.Context) (int, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reporter := g.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}

	resolverDoc, err := g.newDocument()
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return 0, err
	}

	resolver := viewer.New(resolverDoc, g.Source, g.pageOptions(IndexPage, viewer.LatestValue, logger))
	pages := []sitePage{{name: IndexPage, source: viewer.LatestValue}}
	archive, err := resolver.FetchArchive(ctx)
	if err != nil {
		logger.Warn("manifest not available, generating latest page only", "error", err)
	}
	for _, o := range archive {
		pages = append(pages, sitePage{name: o.Value, source: resolver.ArchivePath(o.Date)})
	}

	reporter.Start(len(pages))
	defer reporter.Finish()

	var (
		mu      sync.Mutex
		entries []SearchEntry
	)

	eg, ctx := errgroup.WithContext(ctx)
	if g.MaxConcurrency > 0 {
		eg.SetLimit(g.MaxConcurrency)
	}
	for _, p := range pages {
		p := p
		eg.Go(func() error {
			found, err := g.renderPage(ctx, p, logger)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", p.name, err)
			}
			mu.Lock()
			entries = append(entries, found...)
			mu.Unlock()
			reporter.Step(p.name)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	sortEntries(entries)
	if err := WriteSearchIndex(entries, filepath.Join(g.OutputDir, "search-index.json")); err != nil {
		return 0, fmt.Errorf("writing search index: %w", err)
	}
	if err := g.pruneStale(pages, logger); err != nil {
		return 0, fmt.Errorf("removing stale pages: %w", err)
	}

	logger.Info("site generated", "output", g.OutputDir, "pages", len(pages), "stories", len(entries))
	return len(pages), nil
}

// renderPage renders one page to disk and returns the search entries for
// its brief.
func (g *SiteGenerator) renderPage(ctx context.Context, p sitePage, logger *slog.Logger) ([]SearchEntry, error) {
	doc, err := g.newDocument()
	if err != nil {
		return nil, err
	}

	v := viewer.New(doc, g.Source, g.pageOptions(p.name, p.source, logger))
	v.Load(ctx)
	if err := wireNavigation(doc, p.name); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, p.name), buf.Bytes(), 0o644); err != nil {
		return nil, err
	}

	b, err := v.Shown()
	if err != nil {
		logger.Warn("page written with an error message", "page", p.name, "error", err)
		return nil, nil
	}
	return storyEntries(p.name, b), nil
}

func (g *SiteGenerator) newDocument() (*page.Document, error) {
	doc, err := page.New(g.Template)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}
	return doc, nil
}

func (g *SiteGenerator) pageOptions(name, source string, logger *slog.Logger) viewer.Options {
	opts := g.Options
	opts.Source = source
	opts.Selected = name
	opts.ArchiveValue = PageName
	opts.Logger = logger.With("page", name)
	return opts
}

// wireNavigation points the selector at the generated pages so the site
// works without a server: the latest option links to the index and a
// change navigates instead of submitting the form.
func wireNavigation(doc *page.Document, current string) error {
	if err := doc.SetAttr(page.IDHistorySelect, "onchange", "location.href=this.value"); err != nil {
		return err
	}
	return doc.Element(page.IDHistorySelect, func(sel *html.Node) {
		for _, opt := range page.FindAll(sel, page.ByTag("option")) {
			if v, _ := page.Attr(opt, "value"); v == viewer.LatestValue {
				page.SetAttr(opt, "value", IndexPage)
				if current == IndexPage {
					page.SetAttr(opt, "selected", "")
				}
			}
		}
	})
}

// pruneStale removes archive pages left by an earlier run whose dates are
// no longer in the manifest.
func (g *SiteGenerator) pruneStale(pages []sitePage, logger *slog.Logger) error {
	keep := make(map[string]bool, len(pages))
	for _, p := range pages {
		keep[p.name] = true
	}
	existing, err := doublestar.Glob(os.DirFS(g.OutputDir), PageName("*"))
	if err != nil {
		return err
	}
	for _, name := range existing {
		if keep[name] {
			continue
		}
		if err := os.Remove(filepath.Join(g.OutputDir, name)); err != nil {
			return err
		}
		logger.Info("removed stale page", "page", name)
	}
	return nil
}

func sortEntries(entries []SearchEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Rank < entries[j].Rank
	})
}
