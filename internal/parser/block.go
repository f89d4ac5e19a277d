package parser

import (
	"encoding/json"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
)

// Notion returns two nesting depths for a block entry:
//
//	database row:  {"spaceId": ..., "value": {"value": {...}, "role": ...}}
//	content page:  {"value": {"id": ..., "type": ...}, "role": ...}
type wrapped struct {
	Value json.RawMessage `json:"value"`
}

// ResolveBlock looks up id in the record map and unwraps its block value
func ResolveBlock(rm *models.RecordMap, id string) (*models.BlockValue, bool) {
	if rm == nil {
		return nil, false
	}
	raw, ok := rm.Block[id]
	if !ok {
		return nil, false
	}
	return ResolveEntry(raw)
}

// ResolveEntry unwraps a raw record map entry, trying the double-wrapped form first.
// Malformed input is reported as not found.
func ResolveEntry(raw json.RawMessage) (*models.BlockValue, bool) {
	outer, ok := unwrap(raw)
	if !ok {
		return nil, false
	}
	if inner, ok := unwrap(outer); ok {
		if v, ok := decodeBlock(inner); ok {
			return v, true
		}
	}
	return decodeBlock(outer)
}

func unwrap(raw json.RawMessage) (json.RawMessage, bool) {
	if !isObject(raw) {
		return nil, false
	}
	var w wrapped
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, false
	}
	if !isObject(w.Value) {
		return nil, false
	}
	return w.Value, true
}

// decodeBlock requires a string id. Other fields that fail to decode are left empty.
func decodeBlock(raw json.RawMessage) (*models.BlockValue, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}

	v := &models.BlockValue{}
	if err := json.Unmarshal(fields["id"], &v.ID); err != nil || v.ID == "" {
		return nil, false
	}

	decoders := map[string]func(json.RawMessage) error{
		"type":          func(r json.RawMessage) error { return decodeField(r, &v.Type) },
		"parent_table":  func(r json.RawMessage) error { return decodeField(r, &v.ParentTable) },
		"properties":    func(r json.RawMessage) error { return decodeField(r, &v.Properties) },
		"content":       func(r json.RawMessage) error { return decodeField(r, &v.Content) },
		"collection_id": func(r json.RawMessage) error { return decodeField(r, &v.CollectionID) },
		"view_ids":      func(r json.RawMessage) error { return decodeField(r, &v.ViewIDs) },
		"format":        func(r json.RawMessage) error { return decodeField(r, &v.Format) },
	}
	for key, decode := range decoders {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if err := decode(value); err != nil {
			logger.Debug("Ignoring malformed block field", logger.Fields{"block_id": v.ID, "field": key})
		}
	}
	return v, true
}

// decodeField assigns to dst only when raw decodes cleanly
func decodeField[T any](raw json.RawMessage, dst *T) error {
	var tmp T
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return err
	}
	*dst = tmp
	return nil
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
