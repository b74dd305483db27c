package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insta-archiver/extractor"
)

func TestParsePostURL(t *testing.T) {
	post, err := extractor.ParsePostURL("https://www.instagram.com/p/ABC123/")
	assert.NoError(t, err)
	assert.Equal(t, "ABC123", post.Shortcode)
	assert.False(t, post.IsReel)
	assert.Equal(t, "https://www.instagram.com/p/ABC123/", post.Raw)
}

func TestParsePostURLReel(t *testing.T) {
	post, err := extractor.ParsePostURL("https://instagram.com/reel/xYz_-9")
	assert.NoError(t, err)
	assert.True(t, post.IsReel)
	assert.Equal(t, "xYz_-9", post.Shortcode)
	assert.Equal(t, "https://instagram.com/reel/xYz_-9/", post.Raw, "trailing slash is added")
}

func TestParsePostURLStripsQueryString(t *testing.T) {
	post, err := extractor.ParsePostURL("https://www.instagram.com/p/ABC123/?igsh=tracking&utm_source=share")
	assert.NoError(t, err)
	assert.Equal(t, "ABC123", post.Shortcode)
	assert.NotContains(t, post.Raw, "?")
}

func TestParsePostURLInvalid(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"https://www.instagram.com/someuser/",
		"https://example.com/p/",
		"https://www.instagram.com/stories/someuser/123/",
	}
	for _, raw := range cases {
		_, err := extractor.ParsePostURL(raw)
		assert.ErrorIs(t, err, extractor.ErrInvalidURL, raw)
	}
}
