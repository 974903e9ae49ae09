package backend

import (
	"encoding/json"
	"fmt"
)

// Meta carries pagination fields from a paginated envelope
type Meta struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// List is the normalized shape of every backend list response. The raw shape
// (bare array vs. results envelope) is decided once here; consumers read Data
// and Meta and never re-sniff.
type List[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// paginated mirrors the backend's envelope: results plus pagination metadata
type paginated[T any] struct {
	Results  []T     `json:"results"`
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// normalizeList decodes a backend list payload. A bare JSON array passes
// through under Data with no Meta; a paginated envelope splits into Data and
// Meta. Meta is present iff the backend supplied pagination fields.
func normalizeList[T any](raw json.RawMessage) (List[T], error) {
	var out List[T]

	if len(raw) == 0 {
		out.Data = []T{}
		return out, nil
	}

	trimmed := firstNonSpace(raw)
	switch trimmed {
	case '[':
		if err := json.Unmarshal(raw, &out.Data); err != nil {
			return out, fmt.Errorf("failed to decode list payload: %w", err)
		}
		return out, nil
	case '{':
		var page paginated[T]
		if err := json.Unmarshal(raw, &page); err != nil {
			return out, fmt.Errorf("failed to decode paginated payload: %w", err)
		}
		if page.Results == nil {
			return out, fmt.Errorf("paginated payload missing results field")
		}
		out.Data = page.Results
		out.Meta = &Meta{Count: page.Count}
		if page.Next != nil {
			out.Meta.Next = *page.Next
		}
		if page.Previous != nil {
			out.Meta.Previous = *page.Previous
		}
		return out, nil
	default:
		return out, fmt.Errorf("unexpected list payload shape")
	}
}

func firstNonSpace(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
