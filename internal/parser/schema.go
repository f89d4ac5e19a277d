package parser

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/takak2166/teum/internal/models"
)

type schemaHolder struct {
	Schema map[string]models.SchemaEntry `json:"schema"`
}

// ResolveSchema returns the schema of the first collection in the record map that has one.
// Collections are visited in key order so the choice is stable across calls.
func ResolveSchema(rm *models.RecordMap) (*models.Schema, bool) {
	if rm == nil || len(rm.Collection) == 0 {
		return nil, false
	}

	for _, id := range sortedKeys(rm.Collection) {
		columns, ok := collectionSchema(rm.Collection[id])
		if !ok {
			continue
		}

		keyByName := make(map[string]string, len(columns))
		for _, key := range sortedKeys(columns) {
			keyByName[strings.ToLower(columns[key].Name)] = key
		}
		return &models.Schema{Columns: columns, KeyByName: keyByName}, true
	}
	return nil, false
}

// collectionSchema finds the schema object at either wrap depth
func collectionSchema(raw json.RawMessage) (map[string]models.SchemaEntry, bool) {
	outer, ok := unwrap(raw)
	if !ok {
		return nil, false
	}
	if inner, ok := unwrap(outer); ok {
		if s, ok := decodeSchema(inner); ok {
			return s, true
		}
	}
	return decodeSchema(outer)
}

func decodeSchema(raw json.RawMessage) (map[string]models.SchemaEntry, bool) {
	var h schemaHolder
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, false
	}
	if h.Schema == nil {
		return nil, false
	}
	return h.Schema, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
