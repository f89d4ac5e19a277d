package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/parser"
)

const apiPageSize = 100

// APISource reads entries through the official Notion API
type APISource struct {
	client NotionClient
}

// NewAPISource creates a Source authenticated with an integration token
func NewAPISource(apiKey string) (*APISource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NOTION_API_KEY is not set")
	}

	notionClient := notionapi.NewClient(notionapi.Token(apiKey))
	return NewAPISourceWithClient(newNotionClientAdapter(notionClient)), nil
}

// NewAPISourceWithClient creates a Source over an existing client
func NewAPISourceWithClient(client NotionClient) *APISource {
	return &APISource{client: client}
}

// Rows queries every page of the database and maps its properties to rows
func (s *APISource) Rows(ctx context.Context, tableID string) ([]models.RawRow, error) {
	logger.Debug("Querying Notion database", logger.Fields{"database_id": tableID})

	var rows []models.RawRow
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database().Query(ctx, notionapi.DatabaseID(tableID), &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    apiPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query database: %w", err)
		}
		if resp == nil {
			return nil, fmt.Errorf("%w: empty database query response", ErrMalformedResponse)
		}

		for _, page := range resp.Results {
			rows = append(rows, rowFromPage(page))
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	logger.Debug("Queried Notion database", logger.Fields{
		"database_id": tableID,
		"rows":        len(rows),
	})
	return rows, nil
}

// PageText joins the text of a page's top-level blocks
func (s *APISource) PageText(ctx context.Context, pageID string) (string, error) {
	blockID := notionapi.BlockID(parser.NormalizeID(pageID))

	var lines []string
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Block().GetChildren(ctx, blockID, &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    apiPageSize,
		})
		if err != nil {
			return "", fmt.Errorf("failed to get page blocks: %w", err)
		}
		if resp == nil {
			return "", fmt.Errorf("%w: empty block children response", ErrMalformedResponse)
		}

		for _, block := range resp.Results {
			if text := blockText(block); text != "" {
				lines = append(lines, text)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return parser.JoinLines(lines), nil
}

// rowFromPage maps the title property and the type, author and date columns
func rowFromPage(page notionapi.Page) models.RawRow {
	row := models.RawRow{
		ID: strings.ReplaceAll(string(page.ID), "-", ""),
	}

	for name, prop := range page.Properties {
		if title, ok := titleText(prop); ok {
			row.PageTitle = title
			continue
		}
		switch strings.ToLower(name) {
		case "type":
			row.Type = propertyText(prop)
		case "author":
			row.Author = propertyText(prop)
		case "date":
			row.Date = propertyDate(prop)
		}
	}

	if row.Type == "" {
		row.Type = string(models.EntryTypeQuote)
	}
	return row
}

func titleText(prop notionapi.Property) (string, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return richTextPlain(p.Title), true
	}
	return "", false
}

func propertyText(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		return richTextPlain(p.RichText)
	case *notionapi.SelectProperty:
		return strings.TrimSpace(p.Select.Name)
	}
	if title, ok := titleText(prop); ok {
		return title
	}
	return ""
}

func propertyDate(prop notionapi.Property) string {
	var date *notionapi.DateObject
	switch p := prop.(type) {
	case *notionapi.DateProperty:
		date = p.Date
	default:
		return propertyText(prop)
	}
	if date == nil || date.Start == nil {
		return ""
	}
	return time.Time(*date.Start).Format("2006-01-02")
}

func blockText(block notionapi.Block) string {
	var rt []notionapi.RichText
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		rt = b.Paragraph.RichText
	case *notionapi.Heading1Block:
		rt = b.Heading1.RichText
	case *notionapi.Heading2Block:
		rt = b.Heading2.RichText
	case *notionapi.Heading3Block:
		rt = b.Heading3.RichText
	case *notionapi.BulletedListItemBlock:
		rt = b.BulletedListItem.RichText
	case *notionapi.NumberedListItemBlock:
		rt = b.NumberedListItem.RichText
	case *notionapi.QuoteBlock:
		rt = b.Quote.RichText
	case *notionapi.CalloutBlock:
		rt = b.Callout.RichText
	case *notionapi.ToDoBlock:
		rt = b.ToDo.RichText
	}
	return richTextPlain(rt)
}

func richTextPlain(rt []notionapi.RichText) string {
	var sb strings.Builder
	for _, r := range rt {
		switch {
		case r.PlainText != "":
			sb.WriteString(r.PlainText)
		case r.Text != nil:
			sb.WriteString(r.Text.Content)
		}
	}
	return strings.TrimSpace(sb.String())
}
