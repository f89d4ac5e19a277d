package notion

import (
	"context"
	"fmt"

	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/parser"
)

// RecordMapGetter loads the document tree of one page or database
type RecordMapGetter interface {
	GetRecordMap(ctx context.Context, id string) (*models.RecordMap, error)
}

// RecordMapSource reads entries by parsing record maps
type RecordMapSource struct {
	client RecordMapGetter
}

// NewRecordMapSource creates a Source over client
func NewRecordMapSource(client RecordMapGetter) *RecordMapSource {
	return &RecordMapSource{client: client}
}

func (s *RecordMapSource) Rows(ctx context.Context, tableID string) ([]models.RawRow, error) {
	rm, err := s.client.GetRecordMap(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", tableID, err)
	}
	return parser.New(rm).Rows()
}

func (s *RecordMapSource) PageText(ctx context.Context, pageID string) (string, error) {
	rm, err := s.client.GetRecordMap(ctx, pageID)
	if err != nil {
		return "", fmt.Errorf("failed to load page %s: %w", pageID, err)
	}
	return parser.New(rm).PageText(pageID), nil
}
