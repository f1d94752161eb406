package viewer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/dailybrief/internal/page"
)

const (
	jargonPath   = "./data/jargon_buster.json"
	labPath      = "./data/lab_report.json"
	manifestPath = "./data/manifest.json"
)

func TestJargonInactiveHidden(t *testing.T) {
	src := newFakeSource()
	src.set(jargonPath, `{"is_weekly_active":false,"last_updated":"2026-02-01","terms":[{"term":"RAG","definition":"d","analogy":"a"}]}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)

	assert.False(t, visible(v, page.IDJargonSection))
	assert.Empty(t, cards(v, page.IDJargonContainer, "jargon-card"))
}

func TestJargonActive(t *testing.T) {
	src := newFakeSource()
	src.set(jargonPath, `{"is_weekly_active":true,"last_updated":"2026-02-01","terms":[
		{"term":"RAG","definition":"Retrieval augmented generation","analogy":"An open-book exam"},
		{"term":"MoE","definition":"Mixture of experts","analogy":"A panel of specialists"}]}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)

	assert.True(t, visible(v, page.IDJargonSection))
	got := cards(v, page.IDJargonContainer, "jargon-card")
	require.Len(t, got, 2)
	assert.Equal(t, []string{"RAG"}, headings(got[0], "h4"))
	assert.Contains(t, page.TextContent(got[0]), "Definition: Retrieval augmented generation")
	assert.Equal(t, []string{"Analogy: An open-book exam"}, headings(got[0], "em"))
	assert.Equal(t, []string{"MoE"}, headings(got[1], "h4"))

	assert.Equal(t, "Updated: 2026-02-01", query(v, func(root *html.Node) string {
		return page.TextContent(page.FindByClass(page.FindByID(root, page.IDJargonSection), "update-tag"))
	}))
}

func TestJargonRerenderClearsStaleCards(t *testing.T) {
	src := newFakeSource()
	src.set(jargonPath, `{"is_weekly_active":true,"last_updated":"2026-02-01","terms":[{"term":"RAG","definition":"d","analogy":"a"}]}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)
	require.Len(t, cards(v, page.IDJargonContainer, "jargon-card"), 1)

	src.set(jargonPath, `{"is_weekly_active":false,"last_updated":"2026-02-08","terms":[]}`)
	runLoad(v)

	assert.False(t, visible(v, page.IDJargonSection))
	assert.Empty(t, cards(v, page.IDJargonContainer, "jargon-card"))
}

func TestJargonMissingOrMalformedHidden(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent", ""},
		{"invalid json", `{"is_weekly_active":`},
		{"active without terms", `{"is_weekly_active":true,"last_updated":"2026-02-01"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			if tt.body != "" {
				src.set(jargonPath, tt.body)
			}
			v := newTestViewer(t, src, Options{})
			runLoad(v)
			assert.False(t, visible(v, page.IDJargonSection))
		})
	}
}

func TestLabActive(t *testing.T) {
	src := newFakeSource()
	src.set(labPath, `{"papers":[{"title":"Sparse Attention","innovation":"i","benchmarks":"b","use_case":"u","url":"https://arxiv.org/abs/1"}]}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)

	assert.True(t, visible(v, page.IDLabSection))
	got := cards(v, page.IDLabContainer, "lab-card")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Sparse Attention"}, headings(got[0], "h4"))

	text := page.TextContent(page.FindByClass(got[0], "lab-meta"))
	assert.Contains(t, text, "Innovation: i")
	assert.Contains(t, text, "Benchmarks: b")
	assert.Contains(t, text, "Use Case: u")

	link := page.FindByClass(got[0], "lab-link")
	require.NotNil(t, link)
	href, _ := page.Attr(link, "href")
	assert.Equal(t, "https://arxiv.org/abs/1", href)
	target, _ := page.Attr(link, "target")
	assert.Equal(t, "_blank", target)
}

func TestLabEmptyHidden(t *testing.T) {
	for _, body := range []string{`{"papers":[]}`, `{}`} {
		src := newFakeSource()
		src.set(labPath, body)

		v := newTestViewer(t, src, Options{})
		runLoad(v)

		assert.False(t, visible(v, page.IDLabSection), body)
		assert.Empty(t, cards(v, page.IDLabContainer, "lab-card"), body)
	}
}

func TestPanelsIndependent(t *testing.T) {
	src := newFakeSource()
	src.set(latestPath, `{"date":"2026-02-02","top_stories":[]}`)
	src.fail(jargonPath, fmt.Errorf("boom"))
	src.set(labPath, `{"papers":[{"title":"T","innovation":"i","benchmarks":"b","use_case":"u","url":"https://x"}]}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)

	assert.False(t, visible(v, page.IDJargonSection))
	assert.True(t, visible(v, page.IDLabSection))
	assert.Equal(t, "Updated on 2026-02-02", elementText(v, page.IDMeta))
	assert.Empty(t, cards(v, page.IDStories, "story"))
	assert.Empty(t, cards(v, page.IDStories, "error"))
}

func TestManifestOptionCount(t *testing.T) {
	all := []string{"2026-01-28", "2026-02-02", "2026-01-30", "2026-01-29", "2026-02-01", "2026-01-31"}
	for n := 2; n <= len(all); n++ {
		t.Run(fmt.Sprintf("%d dates", n), func(t *testing.T) {
			dates := all[:n]
			src := newFakeSource()
			src.set(manifestPath, manifestJSON(dates))

			v := newTestViewer(t, src, Options{})
			runLoad(v)

			opts := selectOptions(v)
			// latest comes from the host page
			require.Len(t, opts, n)
			value, _ := page.Attr(opts[0], "value")
			assert.Equal(t, LatestValue, value)

			newest := dates[0]
			for _, d := range dates {
				if d > newest {
					newest = d
				}
			}
			prev := "9999-99-99"
			for _, o := range opts[1:] {
				date := page.TextContent(o)
				assert.NotEqual(t, newest, date)
				assert.Less(t, date, prev)
				prev = date

				value, _ := page.Attr(o, "value")
				assert.Equal(t, "./data/archive/brief_"+date+".json", value)
			}
		})
	}
}

func TestManifestEmptyArchive(t *testing.T) {
	for _, body := range []string{`[]`, `["2026-02-02"]`} {
		src := newFakeSource()
		src.set(manifestPath, body)

		v := newTestViewer(t, src, Options{})
		runLoad(v)

		opts := selectOptions(v)
		require.Len(t, opts, 2, body)
		assert.Equal(t, emptyArchiveLabel, page.TextContent(opts[1]))
		_, disabled := page.Attr(opts[1], "disabled")
		assert.True(t, disabled)
	}
}

func TestManifestFailureLeavesLatestOnly(t *testing.T) {
	src := newFakeSource()
	src.set(manifestPath, `{"not":"an array"}`)

	v := newTestViewer(t, src, Options{})
	runLoad(v)

	opts := selectOptions(v)
	require.Len(t, opts, 1)
	assert.Equal(t, "Latest", page.TextContent(opts[0]))
}

func TestManifestWithInvalidDateLeavesLatestOnly(t *testing.T) {
	for _, body := range []string{`["2026-02-02","/../../escaped"]`, `["2026-02-02","2026-2-1"]`} {
		src := newFakeSource()
		src.set(manifestPath, body)

		v := newTestViewer(t, src, Options{})
		runLoad(v)

		opts := selectOptions(v)
		require.Len(t, opts, 1, body)
		assert.Equal(t, "Latest", page.TextContent(opts[0]))
	}
}

func TestResolveArchiveSkipsInvalidDates(t *testing.T) {
	value := func(date string) string { return "brief_" + date + ".html" }
	got := ResolveArchive([]string{"2026-02-01", "9999-x", "../up", "2026-02-02", "2026-01-31"}, value)
	assert.Equal(t, []ArchiveOption{
		{Date: "2026-02-01", Value: "brief_2026-02-01.html"},
		{Date: "2026-01-31", Value: "brief_2026-01-31.html"},
	}, got)
}

func TestManifestMarksSelected(t *testing.T) {
	src := newFakeSource()
	src.set(manifestPath, manifestJSON([]string{"2026-02-02", "2026-02-01", "2026-01-31"}))

	v := newTestViewer(t, src, Options{
		ArchiveValue: func(date string) string { return "archive/brief_" + date + ".html" },
		Selected:     "archive/brief_2026-01-31.html",
	})
	runLoad(v)

	opts := selectOptions(v)
	require.Len(t, opts, 3)
	_, sel := page.Attr(opts[1], "selected")
	assert.False(t, sel)
	_, sel = page.Attr(opts[2], "selected")
	assert.True(t, sel)
}

func TestFetchArchive(t *testing.T) {
	src := newFakeSource()
	src.set(manifestPath, manifestJSON([]string{"2026-01-31", "2026-02-02", "2026-02-01"}))

	v := newTestViewer(t, src, Options{})
	got, err := v.FetchArchive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ArchiveOption{
		{Date: "2026-02-01", Value: "./data/archive/brief_2026-02-01.json"},
		{Date: "2026-01-31", Value: "./data/archive/brief_2026-01-31.json"},
	}, got)
}

func manifestJSON(dates []string) string {
	out := "["
	for i, d := range dates {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%q", d)
	}
	return out + "]"
}
