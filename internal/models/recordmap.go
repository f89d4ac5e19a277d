package models

import (
	"encoding/json"
	"strings"
)

// RecordMap is the document tree returned by Notion for one page or database id.
// Entries stay raw until resolved because their nesting depth varies.
type RecordMap struct {
	Block           map[string]json.RawMessage            `json:"block"`
	Collection      map[string]json.RawMessage            `json:"collection,omitempty"`
	CollectionView  map[string]json.RawMessage            `json:"collection_view,omitempty"`
	CollectionQuery map[string]map[string]json.RawMessage `json:"collection_query,omitempty"`
}

// Merge copies every entry of other into rm, overwriting existing keys
func (rm *RecordMap) Merge(other *RecordMap) {
	if other == nil {
		return
	}
	rm.Block = mergeRaw(rm.Block, other.Block)
	rm.Collection = mergeRaw(rm.Collection, other.Collection)
	rm.CollectionView = mergeRaw(rm.CollectionView, other.CollectionView)
	for collectionID, views := range other.CollectionQuery {
		for viewID, result := range views {
			rm.SetQueryResult(collectionID, viewID, result)
		}
	}
}

// SetQueryResult stores the reducer results of one collection view query
func (rm *RecordMap) SetQueryResult(collectionID, viewID string, result json.RawMessage) {
	if rm.CollectionQuery == nil {
		rm.CollectionQuery = make(map[string]map[string]json.RawMessage)
	}
	if rm.CollectionQuery[collectionID] == nil {
		rm.CollectionQuery[collectionID] = make(map[string]json.RawMessage)
	}
	rm.CollectionQuery[collectionID][viewID] = result
}

func mergeRaw(dst, src map[string]json.RawMessage) map[string]json.RawMessage {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]json.RawMessage, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// BlockValue is a normalized block: a page, a paragraph or a database row
type BlockValue struct {
	ID           string                     `json:"id"`
	Type         string                     `json:"type,omitempty"`
	ParentTable  string                     `json:"parent_table,omitempty"`
	Properties   map[string]json.RawMessage `json:"properties,omitempty"`
	Content      []string                   `json:"content,omitempty"`
	CollectionID string                     `json:"collection_id,omitempty"`
	ViewIDs      []string                   `json:"view_ids,omitempty"`
	Format       *BlockFormat               `json:"format,omitempty"`
}

// BlockFormat holds the few format fields the app reads
type BlockFormat struct {
	CollectionPointer *Pointer `json:"collection_pointer,omitempty"`
}

// Pointer references another record by table and id
type Pointer struct {
	ID    string `json:"id"`
	Table string `json:"table,omitempty"`
}

// IsCollectionView reports whether the block embeds a database view
func (b *BlockValue) IsCollectionView() bool {
	return b.Type == "collection_view" || b.Type == "collection_view_page"
}

// SchemaEntry describes one database column
type SchemaEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is a database schema together with its lowercased name index
type Schema struct {
	Columns   map[string]SchemaEntry
	KeyByName map[string]string
}

// Key returns the property key of the column with the given name, matched case-insensitively
func (s *Schema) Key(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	key, ok := s.KeyByName[strings.ToLower(name)]
	return key, ok
}
