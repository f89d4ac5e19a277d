package parser

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/takak2166/teum/internal/models"
)

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// NormalizeID regroups a 32 hex character id into dashed 8-4-4-4-12 form.
// Any other input is returned unchanged.
func NormalizeID(raw string) string {
	s := strings.ReplaceAll(raw, "-", "")
	if len(s) != 32 {
		return raw
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return raw
	}
	return id.String()
}

// ExtractPageText joins the titles of a page's child blocks, one line per non-empty child
func ExtractPageText(rm *models.RecordMap, pageID string) string {
	page, ok := ResolveBlock(rm, NormalizeID(pageID))
	if !ok {
		page, ok = ResolveBlock(rm, pageID)
	}
	if !ok {
		return ""
	}

	var lines []string
	for _, childID := range page.Content {
		child, ok := ResolveBlock(rm, childID)
		if !ok {
			continue
		}
		if text := FlattenRichText(child.Properties[titleKey]); text != "" {
			lines = append(lines, text)
		}
	}

	return JoinLines(lines)
}

// JoinLines joins text lines, collapsing runs of three or more newlines to two
func JoinLines(lines []string) string {
	text := strings.Join(lines, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
