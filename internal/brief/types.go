package brief

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Brief is one dated set of ranked stories, as published in daily_brief.json
// and in each archive/brief_{date}.json.
type Brief struct {
	Date       string  `json:"date"`
	TopStories []Story `json:"top_stories"`
}

// Story is a single ranked entry of a Brief.
type Story struct {
	Rank               int      `json:"rank"`
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	Source             string   `json:"source"`
	URL                string   `json:"url"`
	TechnicalTakeaway  Optional `json:"technical_takeaway"`
	PrimaryRisk        Optional `json:"primary_risk"`
	PrimaryOpportunity Optional `json:"primary_opportunity"`
}

// Detail is a labelled optional block of a story card.
type Detail struct {
	Label string
	Text  string
}

// Details returns the present optional fields in display order.
func (s Story) Details() []Detail {
	fields := []struct {
		label string
		opt   Optional
	}{
		{"Technical takeaway", s.TechnicalTakeaway},
		{"Primary risk", s.PrimaryRisk},
		{"Primary opportunity", s.PrimaryOpportunity},
	}

	var out []Detail
	for _, f := range fields {
		if v, ok := f.opt.Value(); ok {
			out = append(out, Detail{Label: f.label, Text: v})
		}
	}
	return out
}

// Optional is a story field the producer may omit. The upstream pipeline
// writes the string "null" for missing values, so absent, JSON null, "null"
// and blank strings all decode to the not-present state.
type Optional struct {
	value string
	set   bool
}

// Some returns a present Optional holding v.
func Some(v string) Optional {
	return Optional{value: v, set: true}
}

// Value returns the field value and whether it is present.
func (o Optional) Value() (string, bool) {
	return o.value, o.set
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional) UnmarshalJSON(data []byte) error {
	*o = Optional{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(s); trimmed == "" || trimmed == "null" {
		return nil
	}
	*o = Some(s)
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// JargonSet is the weekly glossary published in jargon_buster.json.
type JargonSet struct {
	IsWeeklyActive bool         `json:"is_weekly_active"`
	LastUpdated    string       `json:"last_updated"`
	Terms          []JargonTerm `json:"terms"`
}

// JargonTerm is one glossary entry.
type JargonTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Analogy    string `json:"analogy"`
}

// LabDigest is the research digest published in lab_report.json.
type LabDigest struct {
	Papers []Paper `json:"papers"`
}

// Paper is one lab report entry.
type Paper struct {
	Title      string `json:"title"`
	Innovation string `json:"innovation"`
	Benchmarks string `json:"benchmarks"`
	UseCase    string `json:"use_case"`
	URL        string `json:"url"`
}
