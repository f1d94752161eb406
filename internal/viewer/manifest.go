package viewer

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/brief"
	"github.com/ziadkadry99/dailybrief/internal/page"
)

// emptyArchiveLabel is shown as a disabled option when no past briefs exist.
const emptyArchiveLabel = "Archive starts tomorrow"

// ArchiveOption is one entry of the history selector.
type ArchiveOption struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// ResolveArchive turns manifest dates into selector options, newest first,
// leaving out the newest date since it is already shown as latest. Entries
// that are not YYYY-MM-DD dates are skipped.
func ResolveArchive(dates []string, value func(date string) string) []ArchiveOption {
	valid := make([]string, 0, len(dates))
	for _, d := range dates {
		if brief.ValidDate(d) {
			valid = append(valid, d)
		}
	}
	past := brief.PastDates(valid)
	opts := make([]ArchiveOption, 0, len(past))
	for _, d := range past {
		opts = append(opts, ArchiveOption{Date: d, Value: value(d)})
	}
	return opts
}

// FetchArchive fetches the manifest and resolves it into options.
func (v *Viewer) FetchArchive(ctx context.Context) ([]ArchiveOption, error) {
	data, err := v.src.Fetch(ctx, v.opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	dates, err := brief.DecodeManifest(data)
	if err != nil {
		return nil, err
	}
	return ResolveArchive(dates, v.opts.ArchiveValue), nil
}

func (v *Viewer) loadManifest(ctx context.Context, logger *slog.Logger) {
	options, err := v.FetchArchive(ctx)
	if err != nil {
		logger.Warn("manifest not available, archive selector left empty",
			"path", v.opts.ManifestPath, "error", err)
		return
	}

	var nodes []*html.Node
	if len(options) == 0 {
		nodes = append(nodes, page.El("option", page.Attrs("disabled", ""), page.Text(emptyArchiveLabel)))
	}
	for _, o := range options {
		opt := page.El("option", page.Attrs("value", o.Value), page.Text(o.Date))
		if o.Value == v.opts.Selected {
			page.SetAttr(opt, "selected", "")
		}
		nodes = append(nodes, opt)
	}

	if err := v.doc.Append(page.IDHistorySelect, nodes...); err != nil {
		logger.Error("could not populate archive selector", "error", err)
		return
	}
	logger.Debug("archive selector populated", "options", len(options))
}
