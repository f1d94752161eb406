package site

import (
	"encoding/json"
	"os"
	"unicode/utf8"

	"github.com/ziadkadry99/dailybrief/internal/brief"
)

// SearchEntry represents a single searchable story on the site.
type SearchEntry struct {
	Page    string `json:"page"`
	Date    string `json:"date"`
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// maxContent caps the searchable body of an entry.
const maxContent = 2000

// storyEntries builds one entry per story of b, all pointing at pageName.
func storyEntries(pageName string, b *brief.Brief) []SearchEntry {
	entries := make([]SearchEntry, 0, len(b.TopStories))
	for _, s := range b.TopStories {
		content := s.Summary
		for _, d := range s.Details() {
			content += " " + d.Text
		}
		content = truncate(content, maxContent)
		entries = append(entries, SearchEntry{
			Page:    pageName,
			Date:    b.Date,
			Rank:    s.Rank,
			Title:   s.Title,
			Summary: s.Summary,
			Source:  s.Source,
			URL:     s.URL,
			Content: content,
		})
	}
	return entries
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// WriteSearchIndex writes the search index as JSON to the given path. An
// empty index is written as an empty array.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	if entries == nil {
		entries = []SearchEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
