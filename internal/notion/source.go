package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/takak2166/teum/internal/config"
	"github.com/takak2166/teum/internal/models"
)

// ErrMalformedResponse wraps responses that decode but do not have the expected shape
var ErrMalformedResponse = errors.New("malformed notion response")

// Source reads entries out of Notion
type Source interface {
	// Rows returns the rows of the database identified by tableID, in view order
	Rows(ctx context.Context, tableID string) ([]models.RawRow, error)
	// PageText returns the plain text of a page. An unknown page yields "".
	PageText(ctx context.Context, pageID string) (string, error)
}

// NewSource builds the Source selected by cfg.Backend
func NewSource(cfg config.Notion) (Source, error) {
	switch cfg.Backend {
	case config.BackendAPI:
		return NewAPISource(cfg.APIKey)
	case config.BackendRecordMap, "":
		client := NewRecordMapClient(cfg.BaseURL,
			WithTimeout(cfg.HTTPTimeout),
			WithRateLimit(cfg.RequestsPerSecond),
			WithMaxAttempts(cfg.MaxAttempts),
			WithAuthToken(cfg.AuthToken),
		)
		return NewRecordMapSource(client), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// Table binds a Source to the database holding the entries
type Table struct {
	source Source
	id     string
}

// NewTable creates a Table reading database id through source
func NewTable(source Source, id string) *Table {
	return &Table{source: source, id: id}
}

// ListEntryMeta returns the normalized entries of the table
func (t *Table) ListEntryMeta(ctx context.Context) ([]models.EntryMeta, error) {
	rows, err := t.source.Rows(ctx, t.id)
	if err != nil {
		return nil, err
	}
	return models.EntryMetaFromRows(rows), nil
}

// FetchText returns the text of one entry
func (t *Table) FetchText(ctx context.Context, id string) (string, error) {
	return t.source.PageText(ctx, id)
}
