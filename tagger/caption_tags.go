package tagger

import (
	"regexp"
	"strings"

	"insta-archiver/models"
)

var (
	hashtagRe = regexp.MustCompile(`#\w+`)
	mentionRe = regexp.MustCompile(`@[\w.]+`)
)

// captionCategories maps a thematic category to the caption keywords that
// imply it. Ordered so output is deterministic.
var captionCategories = []struct {
	category string
	keywords []string
}{
	{"business", []string{"business", "startup", "entrepreneur", "company"}},
	{"marketing", []string{"marketing", "brand", "promotion", "campaign"}},
	{"sales", []string{"sale", "discount", "offer", "deal", "shop"}},
	{"fitness", []string{"workout", "fitness", "gym", "exercise", "training"}},
	{"food", []string{"recipe", "food", "cooking", "meal", "delicious"}},
	{"travel", []string{"travel", "vacation", "trip", "destination", "explore"}},
	{"fashion", []string{"fashion", "style", "outfit", "clothing", "wear"}},
	{"tutorial", []string{"tutorial", "how to", "step by step", "learn"}},
	{"inspiration", []string{"inspiration", "motivation", "mindset", "goals"}},
	{"personal", []string{"my life", "personal", "journey", "story"}},
	{"positive", []string{"happy", "love", "amazing", "wonderful", "excited"}},
	{"gratitude", []string{"grateful", "thankful", "blessed", "appreciate"}},
	{"celebration", []string{"congratulations", "celebrate", "milestone", "achievement"}},
}

// ctaWords mark captions that push the reader toward an action. Matched as
// substrings, so "following" and "#tagged" count too.
var ctaWords = []string{"comment", "like", "share", "follow", "subscribe", "click", "swipe", "tag", "dm"}

// FromCaption derives tags from the raw caption text: hashtags, keyword
// categories, and a few structural signals. Captions shorter than 10
// characters yield nothing.
func FromCaption(caption string) []models.Tag {
	if len(caption) < 10 {
		return nil
	}
	lower := strings.ToLower(caption)

	var tags []models.Tag
	for _, cat := range captionCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, models.Tag{Name: cat.category})
				break
			}
		}
	}

	hashtags := hashtagRe.FindAllString(caption, -1)
	if len(hashtags) > 5 {
		hashtags = hashtags[:5]
	}
	for _, h := range hashtags {
		name := strings.ToLower(strings.TrimPrefix(h, "#"))
		if len(name) > 2 && len(name) < 20 {
			tags = append(tags, models.Tag{Name: "hashtag: " + name})
		}
	}

	if mentionRe.MatchString(caption) {
		tags = append(tags, models.Tag{Name: "contains mentions"})
	}
	if strings.Contains(caption, "?") {
		tags = append(tags, models.Tag{Name: "question post"})
	}
	for _, cta := range ctaWords {
		if strings.Contains(lower, cta) {
			tags = append(tags, models.Tag{Name: "call-to-action"})
			break
		}
	}

	return capTags(tags, maxCaptionTags)
}
