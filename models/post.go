package models

import (
	"strings"
	"time"
)

// UnknownUsername is the placeholder used when no provider response carries
// an author name. Extraction never yields a record with an empty username.
const UnknownUsername = "Unknown"

// PostRecord is the canonical form of an Instagram post, normalized from
// whatever shape the winning provider returned. Records are immutable after
// normalization.
type PostRecord struct {
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Caption   string    `json:"caption"`
	MediaURLs []string  `json:"media_urls"`
	Timestamp time.Time `json:"timestamp"`
	MediaType string    `json:"media_type,omitempty"`
}

// IsReel reports whether the post URL points at a reel rather than a
// regular post.
func (p PostRecord) IsReel() bool {
	return strings.Contains(p.URL, "/reel/")
}

// Tag is a single classification label destined for the document store's
// multi-select property.
type Tag struct {
	Name string `json:"name"`
}
