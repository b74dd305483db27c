package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"insta-archiver/models"
)

// Each provider pairs a fetch with a pure normalization function keyed by
// the provider's name. Normalizers never touch the network, which keeps the
// idiosyncratic response shapes testable in isolation.

var errProviderFailure = errors.New("provider reported failure")

// newRecord applies the record invariants: username falls back to the
// placeholder, caption collapses to the empty string.
func newRecord(username, caption string, mediaURLs []string, mediaType string, taken time.Time, post PostURL) *models.PostRecord {
	if username == "" {
		username = models.UnknownUsername
	}
	if taken.IsZero() {
		taken = time.Now()
	}
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	return &models.PostRecord{
		URL:       post.Raw,
		Username:  username,
		Caption:   caption,
		MediaURLs: mediaURLs,
		Timestamp: taken,
		MediaType: mediaType,
	}
}

// --- instagram-looter2 /post (GraphQL-like shape) ---

type looterPostResponse struct {
	Status bool `json:"status"`
	Owner  struct {
		Username string `json:"username"`
	} `json:"owner"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	EdgeSidecarToChildren struct {
		Edges []struct {
			Node struct {
				DisplayURL string `json:"display_url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
	DisplayURL       string `json:"display_url"`
	IsVideo          bool   `json:"is_video"`
	TakenAtTimestamp int64  `json:"taken_at_timestamp"`
}

func normalizeLooterPost(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data looterPostResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected looter post shape: %w", err)
	}
	if !data.Status {
		return nil, errProviderFailure
	}

	var caption string
	if len(data.EdgeMediaToCaption.Edges) > 0 {
		caption = data.EdgeMediaToCaption.Edges[0].Node.Text
	}

	var mediaURLs []string
	mediaType := "IMAGE"
	if edges := data.EdgeSidecarToChildren.Edges; len(edges) > 0 {
		// Carousel: one URL per child node, source order preserved.
		for _, e := range edges {
			mediaURLs = append(mediaURLs, e.Node.DisplayURL)
		}
		mediaType = "CAROUSEL"
	} else if data.DisplayURL != "" {
		mediaURLs = []string{data.DisplayURL}
	}
	if data.IsVideo {
		mediaType = "VIDEO"
	}

	var taken time.Time
	if data.TakenAtTimestamp > 0 {
		taken = time.Unix(data.TakenAtTimestamp, 0).UTC()
	}

	return newRecord(data.Owner.Username, caption, mediaURLs, mediaType, taken, post), nil
}

// --- instagram-looter2 /post-dl ---

type looterDownloadResponse struct {
	Status bool `json:"status"`
	Data   struct {
		FullName string `json:"full_name"`
		Username string `json:"username"`
		Caption  string `json:"caption"`
		Medias   []struct {
			Link string `json:"link"`
		} `json:"medias"`
	} `json:"data"`
}

func normalizeLooterDownload(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data looterDownloadResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected looter post-dl shape: %w", err)
	}
	if !data.Status {
		return nil, errProviderFailure
	}

	username := data.Data.Username
	if username == "" {
		username = data.Data.FullName
	}

	var mediaURLs []string
	for _, m := range data.Data.Medias {
		mediaURLs = append(mediaURLs, m.Link)
	}
	mediaType := ""
	if len(mediaURLs) > 1 {
		mediaType = "CAROUSEL"
	}

	return newRecord(username, data.Data.Caption, mediaURLs, mediaType, time.Time{}, post), nil
}

// --- instagram120 /api/instagram/post (loose shape) ---

type instagram120Response struct {
	Error json.RawMessage `json:"error"`
	User  struct {
		Username string `json:"username"`
		FullName string `json:"full_name"`
	} `json:"user"`
	// Caption is either a bare string or an object with a text field.
	Caption            json.RawMessage `json:"caption"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	DisplayURL     string `json:"display_url"`
	ImageVersions2 struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
}

func normalizeInstagram120(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data instagram120Response
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected instagram120 shape: %w", err)
	}
	if len(data.Error) > 0 && string(data.Error) != "null" && string(data.Error) != `""` {
		return nil, errProviderFailure
	}

	username := data.User.Username
	if username == "" {
		username = data.User.FullName
	}

	caption := looseCaption(data.Caption)
	if caption == "" && len(data.EdgeMediaToCaption.Edges) > 0 {
		caption = data.EdgeMediaToCaption.Edges[0].Node.Text
	}

	var mediaURLs []string
	if data.DisplayURL != "" {
		mediaURLs = append(mediaURLs, data.DisplayURL)
	} else if cands := data.ImageVersions2.Candidates; len(cands) > 0 {
		mediaURLs = append(mediaURLs, cands[0].URL)
	}

	return newRecord(username, caption, mediaURLs, "", time.Time{}, post), nil
}

// looseCaption accepts both the string and {"text": ...} caption encodings.
func looseCaption(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Text
	}
	return ""
}

// --- instagram-data1 /post/info ---

type imageVersions struct {
	Candidates []struct {
		URL string `json:"url"`
	} `json:"candidates"`
}

type instagramData1Response struct {
	Error string `json:"error"`
	Owner struct {
		Username string `json:"username"`
	} `json:"owner"`
	Caption struct {
		Text string `json:"text"`
	} `json:"caption"`
	CarouselMedia []struct {
		ImageVersions2 imageVersions `json:"image_versions2"`
	} `json:"carousel_media"`
	ImageVersions2 imageVersions `json:"image_versions2"`
}

func normalizeInstagramData1(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data instagramData1Response
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected instagram-data1 shape: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("%w: %s", errProviderFailure, data.Error)
	}

	var mediaURLs []string
	mediaType := ""
	if len(data.CarouselMedia) > 0 {
		for _, m := range data.CarouselMedia {
			if len(m.ImageVersions2.Candidates) > 0 {
				mediaURLs = append(mediaURLs, m.ImageVersions2.Candidates[0].URL)
			}
		}
		mediaType = "CAROUSEL"
	} else if len(data.ImageVersions2.Candidates) > 0 {
		mediaURLs = append(mediaURLs, data.ImageVersions2.Candidates[0].URL)
	}

	return newRecord(data.Owner.Username, data.Caption.Text, mediaURLs, mediaType, time.Time{}, post), nil
}

// --- instagram-scraper-2022 /ig/post_info ---

type scraper2022Response struct {
	Error string `json:"error"`
	Owner struct {
		Username string `json:"username"`
	} `json:"owner"`
	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	DisplayURL string `json:"display_url"`
}

func normalizeScraper2022(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data scraper2022Response
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected instagram-scraper-2022 shape: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("%w: %s", errProviderFailure, data.Error)
	}

	var caption string
	if len(data.EdgeMediaToCaption.Edges) > 0 {
		caption = data.EdgeMediaToCaption.Edges[0].Node.Text
	}

	var mediaURLs []string
	if data.DisplayURL != "" {
		mediaURLs = []string{data.DisplayURL}
	}

	return newRecord(data.Owner.Username, caption, mediaURLs, "", time.Time{}, post), nil
}

// --- Instagram oEmbed ---

type oembedResponse struct {
	Error      string `json:"error"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title"`
}

func normalizeOembed(raw []byte, post PostURL) (*models.PostRecord, error) {
	var data oembedResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unexpected oembed shape: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("%w: %s", errProviderFailure, data.Error)
	}

	return newRecord(data.AuthorName, data.Title, nil, "", time.Time{}, post), nil
}

// --- public page scrape (ld+json) ---

type ldJSONPost struct {
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
	Caption   string `json:"caption"`
	Thumbnail struct {
		ContentURL string `json:"contentUrl"`
	} `json:"thumbnail"`
}

// normalizePublicPage digs the ld+json metadata block out of the post's
// public HTML page.
func normalizePublicPage(raw []byte, post PostURL) (*models.PostRecord, error) {
	blob := findLdJSON(raw)
	if blob == "" {
		return nil, errors.New("no ld+json metadata in page")
	}

	var data ldJSONPost
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("unexpected ld+json shape: %w", err)
	}

	var mediaURLs []string
	if data.Thumbnail.ContentURL != "" {
		mediaURLs = []string{data.Thumbnail.ContentURL}
	}

	return newRecord(data.Author.Name, data.Caption, mediaURLs, "", time.Time{}, post), nil
}

// findLdJSON walks the document tree and returns the text of the first
// <script type="application/ld+json"> node.
func findLdJSON(page []byte) string {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return ""
	}

	var found string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, attr := range n.Attr {
				if attr.Key == "type" && attr.Val == "application/ld+json" {
					if n.FirstChild != nil {
						found = strings.TrimSpace(n.FirstChild.Data)
					}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return found
}
