package models

import (
	"sort"
	"strings"
)

// EntryType distinguishes quotes from journal posts
type EntryType string

const (
	EntryTypeQuote   EntryType = "quote"
	EntryTypeJournal EntryType = "journal"
)

// EntryTypes lists every known entry type in display order
var EntryTypes = []EntryType{EntryTypeQuote, EntryTypeJournal}

// ParseEntryType maps free-form type text to an EntryType.
// Anything other than exactly "journal", after trimming, is a quote.
func ParseEntryType(s string) EntryType {
	if strings.TrimSpace(s) == string(EntryTypeJournal) {
		return EntryTypeJournal
	}
	return EntryTypeQuote
}

// EntryMeta is one user-facing quote or journal item without its body text
type EntryMeta struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Author    string    `json:"author"`
	Date      string    `json:"date"`
	PageTitle string    `json:"pageTitle"`
}

// RawRow is a database row flattened from a record map, before type normalization
type RawRow struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	PageTitle string `json:"pageTitle"`
}

// NewEntryMeta normalizes a raw row into an EntryMeta
func NewEntryMeta(row RawRow) EntryMeta {
	return EntryMeta{
		ID:        strings.TrimSpace(row.ID),
		Type:      ParseEntryType(row.Type),
		Author:    strings.TrimSpace(row.Author),
		Date:      strings.TrimSpace(row.Date),
		PageTitle: strings.TrimSpace(row.PageTitle),
	}
}

// EntryMetaFromRows converts raw rows, dropping rows without an id
func EntryMetaFromRows(rows []RawRow) []EntryMeta {
	metas := make([]EntryMeta, 0, len(rows))
	for _, row := range rows {
		m := NewEntryMeta(row)
		if m.ID == "" {
			continue
		}
		metas = append(metas, m)
	}
	return metas
}

// FilterByType returns the entries of the given type in their original order
func FilterByType(metas []EntryMeta, t EntryType) []EntryMeta {
	var out []EntryMeta
	for _, m := range metas {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// SortByDateDesc sorts entries by date, newest first. Dates compare as strings,
// so empty dates end up last.
func SortByDateDesc(metas []EntryMeta) {
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Date > metas[j].Date
	})
}

// IDs returns the ids of the given entries
func IDs(metas []EntryMeta) []string {
	ids := make([]string, len(metas))
	for i, m := range metas {
		ids[i] = m.ID
	}
	return ids
}
