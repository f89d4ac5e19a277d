package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
)

// ErrNoSchema is returned when a record map has no database schema to read rows with
var ErrNoSchema = errors.New("no collection schema found")

// titleKey is the reserved property key of a row's title column
const titleKey = "title"

type groupResults struct {
	CollectionGroupResults *struct {
		BlockIDs []string `json:"blockIds"`
	} `json:"collection_group_results"`
}

// RowBlockIDs returns the first non-empty list of row ids found in the collection query results
func RowBlockIDs(rm *models.RecordMap) []string {
	if rm == nil {
		return nil
	}
	for _, collectionID := range sortedKeys(rm.CollectionQuery) {
		views := rm.CollectionQuery[collectionID]
		for _, viewID := range sortedKeys(views) {
			var res groupResults
			if err := json.Unmarshal(views[viewID], &res); err != nil {
				continue
			}
			if res.CollectionGroupResults != nil && len(res.CollectionGroupResults.BlockIDs) > 0 {
				return res.CollectionGroupResults.BlockIDs
			}
		}
	}
	return nil
}

// ExtractRows flattens every database row of the record map, in view order.
// Rows that cannot be resolved are skipped.
func ExtractRows(rm *models.RecordMap) ([]models.RawRow, error) {
	schema, ok := ResolveSchema(rm)
	if !ok {
		return nil, ErrNoSchema
	}

	typeKey, _ := schema.Key("type")
	authorKey, _ := schema.Key("author")
	dateKey, _ := schema.Key("date")

	ids := RowBlockIDs(rm)
	rows := make([]models.RawRow, 0, len(ids))
	skipped := 0

	for _, id := range ids {
		v, ok := ResolveBlock(rm, id)
		if !ok {
			skipped++
			continue
		}

		row := models.RawRow{
			ID:        strings.ReplaceAll(firstNonEmpty(v.ID, id), "-", ""),
			Type:      FlattenRichText(property(v, typeKey)),
			Author:    FlattenRichText(property(v, authorKey)),
			PageTitle: FlattenRichText(property(v, titleKey)),
		}
		if dateKey != "" {
			row.Date = ExtractDate(v.Properties[dateKey])
		}
		if row.Type == "" {
			row.Type = string(models.EntryTypeQuote)
		}
		rows = append(rows, row)
	}

	logger.Debug("Extracted database rows", logger.Fields{
		"rows":    len(rows),
		"skipped": skipped,
	})

	return rows, nil
}

func property(v *models.BlockValue, key string) json.RawMessage {
	if key == "" {
		return nil
	}
	return v.Properties[key]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
