// Package viewer populates a host page with the daily brief, the archive
// selector and the optional jargon and lab panels.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/ziadkadry99/dailybrief/internal/brief"
	"github.com/ziadkadry99/dailybrief/internal/fetch"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// LatestValue is the selector value that stands for the default brief path.
const LatestValue = "latest"

// Options configures document paths and presentation.
type Options struct {
	BriefPath    string
	JargonPath   string
	LabPath      string
	ManifestPath string
	ArchiveDir   string

	// Source is the selector value to render on Load. Empty means latest.
	Source string
	// Selected is the option value marked as selected. Defaults to Source.
	Selected string
	// ArchiveValue maps an archive date to its option value. Defaults to
	// the archive document path.
	ArchiveValue func(date string) string

	Markdown bool
	Logger   *slog.Logger
}

// DefaultOptions returns the paths used by the published site.
func DefaultOptions() Options {
	return Options{
		BriefPath:    "./data/daily_brief.json",
		JargonPath:   "./data/jargon_buster.json",
		LabPath:      "./data/lab_report.json",
		ManifestPath: "./data/manifest.json",
		ArchiveDir:   "./data/archive",
	}
}

// Viewer renders documents from a Source into a page.Document.
type Viewer struct {
	doc    *page.Document
	src    fetch.Source
	opts   Options
	logger *slog.Logger
	md     goldmark.Markdown

	// seq orders brief renders; only the newest may write the story list.
	seq atomic.Uint64
	// shown is the outcome of the render currently on the page.
	shown atomic.Pointer[briefResult]
}

type briefResult struct {
	brief *brief.Brief
	err   error
}

// errNotRendered is returned by Shown before any brief render finished.
var errNotRendered = errors.New("no brief rendered yet")

// New creates a Viewer. Empty paths in opts fall back to DefaultOptions.
func New(doc *page.Document, src fetch.Source, opts Options) *Viewer {
	def := DefaultOptions()
	if opts.BriefPath == "" {
		opts.BriefPath = def.BriefPath
	}
	if opts.JargonPath == "" {
		opts.JargonPath = def.JargonPath
	}
	if opts.LabPath == "" {
		opts.LabPath = def.LabPath
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = def.ManifestPath
	}
	if opts.ArchiveDir == "" {
		opts.ArchiveDir = def.ArchiveDir
	}
	if opts.ArchiveValue == nil {
		dir := opts.ArchiveDir
		opts.ArchiveValue = func(date string) string { return brief.ArchivePath(dir, date) }
	}
	if opts.Selected == "" {
		opts.Selected = opts.Source
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := &Viewer{
		doc:    doc,
		src:    src,
		opts:   opts,
		logger: logger,
	}
	if opts.Markdown {
		v.md = newMarkdown()
	}
	return v
}

// Document returns the page the viewer writes to.
func (v *Viewer) Document() *page.Document { return v.doc }

// Load performs the initial render. The brief, both panels and the manifest
// are fetched concurrently; each writes only its own region of the page.
// Load returns once all four have finished. Failures are handled inside
// each renderer and never surface here.
func (v *Viewer) Load(ctx context.Context) {
	logger := v.logger.With("render_id", uuid.NewString())

	var wg sync.WaitGroup
	tasks := []func(context.Context, *slog.Logger){
		func(ctx context.Context, l *slog.Logger) { v.renderBrief(ctx, v.SourcePath(v.opts.Source), l) },
		v.loadJargon,
		v.loadLab,
		v.loadManifest,
	}
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(context.Context, *slog.Logger)) {
			defer wg.Done()
			task(ctx, logger)
		}(task)
	}
	wg.Wait()
}

// Select re-renders the brief for a selector value, the equivalent of the
// selector's change event. It reports whether the result was applied; a
// render overtaken by a later Select is discarded.
func (v *Viewer) Select(ctx context.Context, value string) bool {
	logger := v.logger.With("render_id", uuid.NewString())
	return v.renderBrief(ctx, v.SourcePath(value), logger)
}

// Shown returns the brief currently on the page, or the error that replaced
// the story list when the last applied render failed.
func (v *Viewer) Shown() (*brief.Brief, error) {
	r := v.shown.Load()
	if r == nil {
		return nil, errNotRendered
	}
	return r.brief, r.err
}

// SourcePath maps a selector value to a document path.
func (v *Viewer) SourcePath(value string) string {
	if value == "" || value == LatestValue {
		return v.opts.BriefPath
	}
	return value
}

// Allowed reports whether value is a selector value this viewer can emit:
// latest, the latest path itself, or a well-formed archive path.
func (v *Viewer) Allowed(value string) bool {
	if value == "" || value == LatestValue || value == v.opts.BriefPath {
		return true
	}
	_, ok := brief.ArchiveDate(v.opts.ArchiveDir, value)
	return ok
}

// ArchivePath returns the document path of the archived brief for date.
func (v *Viewer) ArchivePath(date string) string {
	return brief.ArchivePath(v.opts.ArchiveDir, date)
}
