package tagger

import (
	"strings"
	"time"

	"insta-archiver/models"
)

// FromMetadata buckets the post's non-textual attributes into tags: recency,
// posting time, media shape, caption size, emoji density, and URL format,
// plus two provenance tags recording who processed it and when. The source
// argument names the ingestion path (cli, web, dm-monitor).
func FromMetadata(rec *models.PostRecord, source string, now time.Time) []models.Tag {
	var tags []models.Tag
	add := func(name string) { tags = append(tags, models.Tag{Name: name}) }

	if !rec.Timestamp.IsZero() {
		days := int(now.Sub(rec.Timestamp).Hours() / 24)
		switch {
		case days <= 0:
			add("timing: today")
		case days == 1:
			add("timing: yesterday")
		case days <= 7:
			add("timing: this week")
		case days <= 30:
			add("timing: this month")
		case days <= 90:
			add("timing: recent")
		default:
			add("timing: older content")
		}
		add("posted: " + rec.Timestamp.Weekday().String())

		hour := rec.Timestamp.Hour()
		switch {
		case hour >= 6 && hour < 12:
			add("time: morning")
		case hour >= 12 && hour < 17:
			add("time: afternoon")
		case hour >= 17 && hour < 21:
			add("time: evening")
		default:
			add("time: night")
		}
	}

	mediaType := strings.ToLower(rec.MediaType)
	switch {
	case strings.Contains(mediaType, "video") || strings.Contains(mediaType, "reel"):
		add("media: video content")
	case strings.Contains(mediaType, "carousel"):
		add("media: carousel")
	case strings.Contains(mediaType, "photo") || strings.Contains(mediaType, "image"):
		add("media: photo content")
	}

	imageCount := len(rec.MediaURLs)
	switch {
	case imageCount == 1:
		add("images: single")
	case imageCount > 1 && imageCount <= 3:
		add("images: few")
	case imageCount > 3 && imageCount <= 6:
		add("images: multiple")
	case imageCount > 6:
		add("images: many")
	}
	if imageCount >= 3 && len(rec.Caption) > 100 {
		add("content: rich media")
	}

	// Caption length and emoji density apply only when there is a caption.
	if len(rec.Caption) > 0 {
		switch captionLen := len(rec.Caption); {
		case captionLen < 50:
			add("caption: short")
		case captionLen < 200:
			add("caption: medium")
		case captionLen < 500:
			add("caption: long")
		default:
			add("caption: very long")
		}

		switch emojis := countEmojis(rec.Caption); {
		case emojis > 5:
			add("style: emoji-rich")
		case emojis > 0:
			add("style: contains emojis")
		default:
			add("style: text-only")
		}
	}

	if strings.Contains(rec.URL, "/reel/") {
		add("format: instagram reel")
	} else if strings.Contains(rec.URL, "/p/") {
		add("format: instagram post")
	}

	// Provenance always survives the cap.
	tags = capTags(tags, maxMetadataTags-2)

	if source == "" {
		source = "archiver"
	}
	tags = append(tags,
		models.Tag{Name: "processed: " + source},
		models.Tag{Name: "processed: " + now.Format("2006-01-02")},
	)
	return tags
}

func countEmojis(s string) int {
	count := 0
	for _, r := range s {
		switch {
		case r >= 0x1F300 && r <= 0x1F6FF,
			r >= 0x1F900 && r <= 0x1F9FF,
			r >= 0x2600 && r <= 0x27BF,
			r >= 0x1F1E6 && r <= 0x1F1FF:
			count++
		}
	}
	return count
}
