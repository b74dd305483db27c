// Package notion persists processed posts as pages in a Notion database.
package notion

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"

	"insta-archiver/config"
	"insta-archiver/logger"
	"insta-archiver/models"
)

// maxRichTextLength keeps rich_text property values under Notion's 2000
// character limit with headroom for the ellipsis.
const maxRichTextLength = 1900

// maxImageBlocks bounds how many media URLs become image blocks on the page.
const maxImageBlocks = 10

// PersistenceError wraps a failed page creation. The underlying API error
// is propagated verbatim so callers can log Notion's own message.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save to Notion: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store writes pages into a single Notion database.
type Store struct {
	Client     *notionapi.Client
	DatabaseID string
}

func New(cfg config.AppConfig) *Store {
	return &Store{
		Client:     notionapi.NewClient(notionapi.Token(cfg.NotionAPIKey)),
		DatabaseID: cfg.NotionDatabaseID,
	}
}

// CreatePage persists one processed post and returns the created page's ID
// and URL.
func (s *Store) CreatePage(ctx context.Context, rec *models.PostRecord, summary, imageAnalysis string, tags []models.Tag) (string, string, error) {
	req := BuildPageRequest(s.DatabaseID, rec, summary, imageAnalysis, tags)

	page, err := s.Client.Page.Create(ctx, req)
	if err != nil {
		return "", "", &PersistenceError{Err: err}
	}

	logger.InfoWithFields("saved page to Notion", logger.Fields{
		"page_id":  page.ID.String(),
		"username": rec.Username,
		"tags":     len(tags),
	})
	return page.ID.String(), page.URL, nil
}

// BuildPageRequest maps a processed post onto the database schema. Pure;
// tests assert on the request without any client.
func BuildPageRequest(databaseID string, rec *models.PostRecord, summary, imageAnalysis string, tags []models.Tag) *notionapi.PageCreateRequest {
	title := fmt.Sprintf("@%s - %s", rec.Username, mediaLabel(rec))

	options := make([]notionapi.Option, 0, len(tags))
	for _, t := range tags {
		options = append(options, notionapi.Option{Name: t.Name})
	}

	date := notionapi.Date(rec.Timestamp)
	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: richText(title),
		},
		"Text": notionapi.RichTextProperty{
			RichText: richText(truncate(rec.Caption)),
		},
		"Summary": notionapi.RichTextProperty{
			RichText: richText(truncate(summary)),
		},
		"URL": notionapi.URLProperty{
			URL: rec.URL,
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		"Tags": notionapi.MultiSelectProperty{
			MultiSelect: options,
		},
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
		Children:   buildBlocks(rec, summary, imageAnalysis),
	}
}

func buildBlocks(rec *models.PostRecord, summary, imageAnalysis string) []notionapi.Block {
	blocks := []notionapi.Block{
		heading("AI Summary"),
		paragraph(truncate(summary)),
	}

	if imageAnalysis != "" {
		blocks = append(blocks,
			heading("Image Analysis"),
			paragraph(truncate(imageAnalysis)),
		)
	}

	if len(rec.MediaURLs) > 0 {
		blocks = append(blocks, heading("Original Images"))
		media := rec.MediaURLs
		if len(media) > maxImageBlocks {
			media = media[:maxImageBlocks]
		}
		for _, u := range media {
			blocks = append(blocks, notionapi.ImageBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeImage,
				},
				Image: notionapi.Image{
					Type:     notionapi.FileTypeExternal,
					External: &notionapi.FileObject{URL: u},
				},
			})
		}
	}

	if rec.Caption != "" {
		blocks = append(blocks,
			heading("Original Caption"),
			paragraph(truncate(rec.Caption)),
		)
	}

	return blocks
}

func mediaLabel(rec *models.PostRecord) string {
	if rec.MediaType != "" {
		return strings.ToUpper(rec.MediaType)
	}
	if rec.IsReel() {
		return "REEL"
	}
	return "POST"
}

func heading(text string) notionapi.Block {
	return notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading2,
		},
		Heading2: notionapi.Heading{RichText: richText(text)},
	}
}

func paragraph(text string) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{RichText: richText(text)},
	}
}

func richText(text string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: text}},
	}
}

func truncate(text string) string {
	if len(text) <= maxRichTextLength {
		return text
	}
	// Back up to a rune boundary so a multi-byte character is never split.
	cut := maxRichTextLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
