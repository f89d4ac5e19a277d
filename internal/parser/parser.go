package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
)

// Parser turns a Notion record map into entry rows and page text
type Parser struct {
	recordMap *models.RecordMap
}

// New creates a Parser, optionally around an already decoded record map
func New(rm ...*models.RecordMap) *Parser {
	p := &Parser{}
	if len(rm) > 0 {
		p.recordMap = rm[0]
	}
	return p
}

// ParseFile reads and decodes a record map dumped to disk
func (p *Parser) ParseFile(filepath string) error {
	logger.Debug("Reading record map file", logger.Fields{
		"filepath": filepath,
	})

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(data)
}

// Parse decodes a record map. A bare block map is accepted as well.
func (p *Parser) Parse(data []byte) error {
	rm := &models.RecordMap{}
	if err := json.Unmarshal(data, rm); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	if rm.Block == nil {
		var blocks map[string]json.RawMessage
		if err := json.Unmarshal(data, &blocks); err != nil {
			return fmt.Errorf("failed to parse block map: %w", err)
		}
		rm.Block = blocks
	}

	p.recordMap = rm

	logger.Debug("Parsed record map", logger.Fields{
		"blocks":      len(rm.Block),
		"collections": len(rm.Collection),
	})

	return nil
}

// RecordMap returns the decoded record map, or nil before Parse
func (p *Parser) RecordMap() *models.RecordMap {
	return p.recordMap
}

// Rows extracts the database rows of the parsed record map
func (p *Parser) Rows() ([]models.RawRow, error) {
	return ExtractRows(p.recordMap)
}

// PageText assembles the plain text of a page in the parsed record map
func (p *Parser) PageText(pageID string) string {
	return ExtractPageText(p.recordMap, pageID)
}
