package tagger

import (
	"regexp"
	"strings"

	"insta-archiver/models"
)

// tagsBlockRe isolates the structured block the summarizer is prompted to
// emit. The block ends at the first blank line or at end of text.
var tagsBlockRe = regexp.MustCompile(`(?is)\*\*TAGS:\*\*\s*(.*?)(?:\n\s*\n|$)`)

// categoryPatterns are matched against the structured block in order.
// Prefixed categories carry their lowercase category name; Topics tags go
// in bare.
var categoryPatterns = []struct {
	prefix string
	re     *regexp.Regexp
}{
	{"content type", regexp.MustCompile(`(?i)Content Type:\s*\[([^\]]+)\]`)},
	{"industry", regexp.MustCompile(`(?i)Industry:\s*\[([^\]]+)\]`)},
	{"audience", regexp.MustCompile(`(?i)Audience:\s*\[([^\]]+)\]`)},
	{"mood", regexp.MustCompile(`(?i)Mood:\s*\[([^\]]+)\]`)},
	{"format", regexp.MustCompile(`(?i)Format:\s*\[([^\]]+)\]`)},
	{"", regexp.MustCompile(`(?i)Topics:\s*\[([^\]]+)\]`)},
}

// fallbackLineRes match loose "tags: a, b, c" style lines when the model
// ignored the structured format.
var fallbackLineRes = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*tags?:\s*(.+)$`),
	regexp.MustCompile(`(?im)^\s*keywords?:\s*(.+)$`),
	regexp.MustCompile(`(?im)^\s*topics?:\s*(.+)$`),
	regexp.MustCompile(`(?im)^\s*categories:\s*(.+)$`),
}

// keywordHints derive a handful of tags from the narrative itself when no
// tag lines could be parsed at all.
var keywordHints = []struct {
	words []string
	tag   string
}{
	{[]string{"tutorial", "how to", "guide"}, "content type: tutorial"},
	{[]string{"education", "learn"}, "content type: educational"},
	{[]string{"inspir", "motivat"}, "mood: inspiring"},
	{[]string{"business", "entrepreneur"}, "industry: business"},
	{[]string{"technology", "tech "}, "industry: technology"},
}

// FromSummary parses the categorized tag block out of the model's response.
// It degrades through three tiers: the structured **TAGS:** block, then
// loose "tags:"-style lines, then keyword sniffing over the whole text.
// Never fails; an unparseable summary yields no tags.
func FromSummary(summary string) []models.Tag {
	if summary == "" {
		return nil
	}

	var tags []models.Tag
	if m := tagsBlockRe.FindStringSubmatch(summary); m != nil {
		tags = parseStructuredBlock(m[1])
	}
	if len(tags) == 0 {
		tags = parseFallbackLines(summary)
	}
	if len(tags) == 0 {
		tags = sniffKeywords(summary)
	}
	return capTags(tags, maxAITags)
}

func parseStructuredBlock(block string) []models.Tag {
	var tags []models.Tag
	for _, cat := range categoryPatterns {
		m := cat.re.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		for _, item := range strings.Split(m[1], ",") {
			name := strings.ToLower(strings.TrimSpace(item))
			if len(name) == 0 || len(name) >= 50 {
				continue
			}
			if cat.prefix == "" {
				if name == "general" || name == "misc" {
					continue
				}
				tags = append(tags, models.Tag{Name: name})
			} else {
				if name == "general" || name == "other" {
					continue
				}
				tags = append(tags, models.Tag{Name: cat.prefix + ": " + name})
			}
		}
	}
	return tags
}

func parseFallbackLines(summary string) []models.Tag {
	var tags []models.Tag
	for _, re := range fallbackLineRes {
		m := re.FindStringSubmatch(summary)
		if m == nil {
			continue
		}
		for _, item := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == ';'
		}) {
			name := strings.ToLower(strings.TrimSpace(item))
			name = strings.TrimPrefix(name, "#")
			name = strings.TrimPrefix(name, "-")
			name = strings.TrimSpace(name)
			if len(name) > 2 && len(name) < 30 {
				tags = append(tags, models.Tag{Name: name})
			}
		}
		if len(tags) > 0 {
			break
		}
	}
	return tags
}

func sniffKeywords(summary string) []models.Tag {
	lower := strings.ToLower(summary)
	var tags []models.Tag
	for _, hint := range keywordHints {
		for _, w := range hint.words {
			if strings.Contains(lower, w) {
				tags = append(tags, models.Tag{Name: hint.tag})
				break
			}
		}
	}
	return tags
}
