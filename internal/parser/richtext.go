package parser

import (
	"encoding/json"
	"strings"
)

// dateTag marks a date mention inside a segment's annotation list
const dateTag = "d"

// FlattenRichText concatenates the text chunks of a rich text array and trims the result.
// Anything that is not an array flattens to "".
func FlattenRichText(raw json.RawMessage) string {
	segments, ok := decodeArray(raw)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := decodeArray(seg)
		if !ok || len(parts) == 0 {
			continue
		}
		var text string
		if err := json.Unmarshal(parts[0], &text); err != nil {
			continue
		}
		sb.WriteString(text)
	}
	return strings.TrimSpace(sb.String())
}

// ExtractDate returns the start_date of the first date annotation in a rich text array
func ExtractDate(raw json.RawMessage) string {
	segments, ok := decodeArray(raw)
	if !ok {
		return ""
	}

	for _, seg := range segments {
		parts, ok := decodeArray(seg)
		if !ok || len(parts) < 2 {
			continue
		}
		annotations, ok := decodeArray(parts[1])
		if !ok {
			continue
		}
		for _, a := range annotations {
			if date, ok := dateAnnotation(a); ok {
				return date
			}
		}
	}
	return ""
}

// dateAnnotation decodes ["d", {"start_date": "..."}]
func dateAnnotation(raw json.RawMessage) (string, bool) {
	parts, ok := decodeArray(raw)
	if !ok || len(parts) < 2 {
		return "", false
	}
	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil || tag != dateTag {
		return "", false
	}
	if !isObject(parts[1]) {
		return "", false
	}
	var d struct {
		StartDate string `json:"start_date"`
	}
	if err := json.Unmarshal(parts[1], &d); err != nil || d.StartDate == "" {
		return "", false
	}
	return d.StartDate, true
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	// null decodes to a nil slice without error
	if arr == nil {
		return nil, false
	}
	return arr, true
}
