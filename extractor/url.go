package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidURL is returned when a URL carries no recognizable post or reel
// segment. It is raised before any network call is made.
var ErrInvalidURL = errors.New("invalid Instagram URL: no /p/<id>/ or /reel/<id>/ segment")

var shortcodeRe = regexp.MustCompile(`/(p|reel)/([A-Za-z0-9_-]+)`)

// PostURL is a validated Instagram post or reel URL plus its extracted
// shortcode.
type PostURL struct {
	Raw       string
	Shortcode string
	IsReel    bool
}

// ParsePostURL validates the URL and pulls out the shortcode. Query strings
// are stripped because share links append tracking parameters that some
// providers reject.
func ParsePostURL(raw string) (PostURL, error) {
	cleaned := strings.TrimSpace(raw)
	if i := strings.IndexByte(cleaned, '?'); i >= 0 {
		cleaned = cleaned[:i]
	}

	m := shortcodeRe.FindStringSubmatch(cleaned)
	if m == nil {
		return PostURL{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	if !strings.HasSuffix(cleaned, "/") {
		cleaned += "/"
	}

	return PostURL{
		Raw:       cleaned,
		Shortcode: m[2],
		IsReel:    m[1] == "reel",
	}, nil
}
