// Package tagger converts model output, captions, and post metadata into
// the deduplicated tag set persisted with each page.
package tagger

import (
	"fmt"
	"strings"
	"time"

	"insta-archiver/models"
)

// MaxTags caps the merged tag list; the document store's multi-select
// property degrades beyond this.
const MaxTags = 25

// Per-source caps applied before the merge.
const (
	maxAITags       = 15
	maxCaptionTags  = 8
	maxMetadataTags = 10
)

// Collect runs every tag source over the processed post and merges the
// results. It never fails; a source that finds nothing contributes nothing.
func Collect(rec *models.PostRecord, summary, imageAnalysis, source string, now time.Time) []models.Tag {
	return Merge(
		Base(rec),
		FromSummary(summary),
		FromContent(summary, imageAnalysis),
		FromCaption(rec.Caption),
		FromMetadata(rec, source, now),
	)
}

// Base derives the always-present tags from the record itself.
func Base(rec *models.PostRecord) []models.Tag {
	var tags []models.Tag
	if rec.MediaType != "" {
		tags = append(tags, models.Tag{Name: rec.MediaType})
	}
	tags = append(tags, models.Tag{Name: "@" + rec.Username})
	if n := len(rec.MediaURLs); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		tags = append(tags, models.Tag{Name: fmt.Sprintf("%d image%s", n, plural)})
	}
	return tags
}

// FromContent sniffs the generated text for a few coarse content markers.
func FromContent(summary, imageAnalysis string) []models.Tag {
	var tags []models.Tag
	lower := strings.ToLower(summary)
	if strings.Contains(lower, "video") {
		tags = append(tags, models.Tag{Name: "video content"})
	}
	if strings.Contains(lower, "carousel") {
		tags = append(tags, models.Tag{Name: "carousel"})
	}
	if strings.Contains(strings.ToLower(imageAnalysis), "text") {
		tags = append(tags, models.Tag{Name: "contains text"})
	}
	return tags
}

// Merge deduplicates case-insensitively across all sources, preserving
// first-seen order, and applies the overall cap.
func Merge(groups ...[]models.Tag) []models.Tag {
	seen := make(map[string]bool)
	var out []models.Tag
	for _, group := range groups {
		for _, t := range group {
			key := strings.ToLower(t.Name)
			if key == "" || seen[key] {
				continue
			}
			if len(out) >= MaxTags {
				return out
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

// Names flattens tags for storage layers that want plain strings.
func Names(tags []models.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func capTags(tags []models.Tag, limit int) []models.Tag {
	if len(tags) > limit {
		return tags[:limit]
	}
	return tags
}
