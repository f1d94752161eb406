package brief

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a document decodes but lacks required fields,
// or does not decode at all.
var ErrMalformed = errors.New("malformed document")

// DecodeBrief parses and validates a brief document.
func DecodeBrief(data []byte) (*Brief, error) {
	var raw struct {
		Date       string           `json:"date"`
		TopStories *json.RawMessage `json:"top_stories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Date == "" {
		return nil, fmt.Errorf("%w: missing date", ErrMalformed)
	}
	if raw.TopStories == nil || string(*raw.TopStories) == "null" {
		return nil, fmt.Errorf("%w: missing top_stories", ErrMalformed)
	}

	b := &Brief{Date: raw.Date}
	if err := json.Unmarshal(*raw.TopStories, &b.TopStories); err != nil {
		return nil, fmt.Errorf("%w: top_stories: %v", ErrMalformed, err)
	}
	for i, s := range b.TopStories {
		if s.Title == "" {
			return nil, fmt.Errorf("%w: story %d has no title", ErrMalformed, i+1)
		}
	}
	return b, nil
}

// DecodeJargon parses a jargon document. An inactive set is valid without
// terms; an active one must carry them.
func DecodeJargon(data []byte) (*JargonSet, error) {
	var raw struct {
		IsWeeklyActive bool          `json:"is_weekly_active"`
		LastUpdated    string        `json:"last_updated"`
		Terms          *[]JargonTerm `json:"terms"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	set := &JargonSet{IsWeeklyActive: raw.IsWeeklyActive, LastUpdated: raw.LastUpdated}
	if raw.Terms != nil {
		set.Terms = *raw.Terms
	} else if raw.IsWeeklyActive {
		return nil, fmt.Errorf("%w: active jargon set without terms", ErrMalformed)
	}
	return set, nil
}

// DecodeLab parses a lab report document.
func DecodeLab(data []byte) (*LabDigest, error) {
	var d LabDigest
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &d, nil
}

// DecodeManifest parses the archive manifest, a JSON array of ISO dates.
// Every entry must be a YYYY-MM-DD date since entries become file names.
func DecodeManifest(data []byte) ([]string, error) {
	var dates []string
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, d := range dates {
		if !ValidDate(d) {
			return nil, fmt.Errorf("%w: manifest entry %d (%q) is not a YYYY-MM-DD date", ErrMalformed, i+1, d)
		}
	}
	return dates, nil
}
