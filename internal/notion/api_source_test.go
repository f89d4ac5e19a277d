package notion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/jomei/notionapi"

	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/notion"
	"github.com/takak2166/teum/internal/notion/mock_notion"
)

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{PlainText: s}}
}

func TestNewAPISource(t *testing.T) {
	tests := []struct {
		name        string
		apiKey      string
		expectError bool
	}{
		{
			name:   "Valid configuration",
			apiKey: "test_key",
		},
		{
			name:        "Missing API key",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := notion.NewAPISource(tt.apiKey)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if source == nil {
					t.Error("Expected source, got nil")
				}
			}
		})
	}
}

func TestAPISourceRows(t *testing.T) {
	ctx := context.Background()
	date := notionapi.Date(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))

	firstPage := &notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{
				ID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
				Properties: notionapi.Properties{
					"Name":   &notionapi.TitleProperty{Title: richText("Morning pages")},
					"Type":   &notionapi.SelectProperty{Select: notionapi.Option{Name: "journal"}},
					"Author": &notionapi.RichTextProperty{RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: "Me"}}}},
					"Date":   &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &date}},
				},
			},
		},
		HasMore:    true,
		NextCursor: "cursor-2",
	}
	secondPage := &notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{
				ID: "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
				Properties: notionapi.Properties{
					"Title": &notionapi.TitleProperty{Title: richText("Stay hungry")},
					"date":  &notionapi.DateProperty{},
				},
			},
		},
	}

	tests := map[string]struct {
		setupMocks  func(mockClient *mock_notion.MockNotionClient, mockDatabase *mock_notion.MockDatabaseService)
		want        []models.RawRow
		expectError bool
	}{
		"Success - Paginated": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockDatabase *mock_notion.MockDatabaseService) {
				mockClient.EXPECT().Database().Return(mockDatabase).AnyTimes()

				gomock.InOrder(
					mockDatabase.EXPECT().Query(ctx, notionapi.DatabaseID("table"), gomock.Any()).
						DoAndReturn(func(_ context.Context, _ notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
							if req.StartCursor != "" {
								t.Errorf("first query cursor = %q, want empty", req.StartCursor)
							}
							return firstPage, nil
						}),
					mockDatabase.EXPECT().Query(ctx, notionapi.DatabaseID("table"), gomock.Any()).
						DoAndReturn(func(_ context.Context, _ notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
							if req.StartCursor != "cursor-2" {
								t.Errorf("second query cursor = %q, want cursor-2", req.StartCursor)
							}
							return secondPage, nil
						}),
				)
			},
			want: []models.RawRow{
				{ID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Type: "journal", Author: "Me", Date: "2024-03-09", PageTitle: "Morning pages"},
				{ID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Type: "quote", PageTitle: "Stay hungry"},
			},
		},
		"Error - Query failed": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockDatabase *mock_notion.MockDatabaseService) {
				mockClient.EXPECT().Database().Return(mockDatabase).AnyTimes()
				mockDatabase.EXPECT().Query(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("unauthorized"))
			},
			expectError: true,
		},
		"Error - Empty response": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockDatabase *mock_notion.MockDatabaseService) {
				mockClient.EXPECT().Database().Return(mockDatabase).AnyTimes()
				mockDatabase.EXPECT().Query(ctx, gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			expectError: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mock_notion.NewMockNotionClient(ctrl)
			mockDatabase := mock_notion.NewMockDatabaseService(ctrl)
			tt.setupMocks(mockClient, mockDatabase)

			source := notion.NewAPISourceWithClient(mockClient)
			rows, err := source.Rows(ctx, "table")
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Rows() error = %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("Rows() returned %d rows, want %d", len(rows), len(tt.want))
			}
			for i := range rows {
				if rows[i] != tt.want[i] {
					t.Errorf("Rows()[%d] = %+v, want %+v", i, rows[i], tt.want[i])
				}
			}
		})
	}
}

func TestAPISourcePageText(t *testing.T) {
	ctx := context.Background()
	pageID := "0123456789abcdef0123456789abcdef"
	blockID := notionapi.BlockID("01234567-89ab-cdef-0123-456789abcdef")

	tests := map[string]struct {
		setupMocks  func(mockClient *mock_notion.MockNotionClient, mockBlock *mock_notion.MockBlockService)
		want        string
		expectError bool
	}{
		"Success - Mixed blocks": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockBlock *mock_notion.MockBlockService) {
				mockClient.EXPECT().Block().Return(mockBlock).AnyTimes()
				gomock.InOrder(
					mockBlock.EXPECT().GetChildren(ctx, blockID, gomock.Any()).Return(&notionapi.GetChildrenResponse{
						Results: []notionapi.Block{
							&notionapi.Heading1Block{Heading1: notionapi.Heading{RichText: richText("Title")}},
							&notionapi.DividerBlock{},
							&notionapi.ParagraphBlock{Paragraph: notionapi.Paragraph{RichText: richText("first\n\n\n\nsecond")}},
						},
						HasMore:    true,
						NextCursor: "next",
					}, nil),
					mockBlock.EXPECT().GetChildren(ctx, blockID, gomock.Any()).Return(&notionapi.GetChildrenResponse{
						Results: []notionapi.Block{
							&notionapi.QuoteBlock{Quote: notionapi.Quote{RichText: richText("quoted")}},
						},
					}, nil),
				)
			},
			want: "Title\nfirst\n\nsecond\nquoted",
		},
		"Success - Empty page": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockBlock *mock_notion.MockBlockService) {
				mockClient.EXPECT().Block().Return(mockBlock).AnyTimes()
				mockBlock.EXPECT().GetChildren(ctx, blockID, gomock.Any()).Return(&notionapi.GetChildrenResponse{}, nil)
			},
			want: "",
		},
		"Error - GetChildren failed": {
			setupMocks: func(mockClient *mock_notion.MockNotionClient, mockBlock *mock_notion.MockBlockService) {
				mockClient.EXPECT().Block().Return(mockBlock).AnyTimes()
				mockBlock.EXPECT().GetChildren(ctx, blockID, gomock.Any()).Return(nil, errors.New("not found"))
			},
			expectError: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mock_notion.NewMockNotionClient(ctrl)
			mockBlock := mock_notion.NewMockBlockService(ctrl)
			tt.setupMocks(mockClient, mockBlock)

			source := notion.NewAPISourceWithClient(mockClient)
			got, err := source.PageText(ctx, pageID)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("PageText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PageText() = %q, want %q", got, tt.want)
			}
		})
	}
}
