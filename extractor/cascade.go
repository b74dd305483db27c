package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"insta-archiver/logger"
	"insta-archiver/models"
)

// maxBodyBytes bounds how much of a provider response is read. Provider
// payloads are small JSON documents; the public page is the only large one.
const maxBodyBytes = 4 << 20

// Endpoints holds the provider base URLs. Tests point these at httptest
// servers.
type Endpoints struct {
	LooterBase       string
	Instagram120Base string
	Data1Base        string
	Scraper2022Base  string
	OembedBase       string
	PublicPageBase   string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		LooterBase:       "https://instagram-looter2.p.rapidapi.com",
		Instagram120Base: "https://instagram120.p.rapidapi.com",
		Data1Base:        "https://instagram-data1.p.rapidapi.com",
		Scraper2022Base:  "https://instagram-scraper-2022.p.rapidapi.com",
		OembedBase:       "https://api.instagram.com",
		PublicPageBase:   "https://www.instagram.com",
	}
}

// AllProvidersFailedError is returned when every provider in the cascade
// has been attempted without producing a usable record. It carries the last
// underlying failure.
type AllProvidersFailedError struct {
	Attempts int
	LastErr  error
}

func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all %d providers failed to extract post content: %v", e.Attempts, e.LastErr)
}

func (e *AllProvidersFailedError) Unwrap() error { return e.LastErr }

// attempt is one step of the cascade: a named fetch plus the pure
// normalizer for that provider's response shape.
type attempt struct {
	name      string
	fetch     func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error)
	normalize func(raw []byte, post PostURL) (*models.PostRecord, error)
}

// Cascade tries a fixed, ordered list of content providers until one yields
// a normalizable record. Each provider is attempted exactly once per run;
// there is no backoff and no retry.
type Cascade struct {
	HTTPClient  *http.Client
	RapidAPIKey string
	Endpoints   Endpoints
	Timeout     time.Duration
}

func New(rapidAPIKey string) *Cascade {
	return &Cascade{
		HTTPClient:  &http.Client{},
		RapidAPIKey: rapidAPIKey,
		Endpoints:   DefaultEndpoints(),
		Timeout:     15 * time.Second,
	}
}

// Extract resolves the URL to a PostRecord. The second return value names
// the provider that won. Invalid URLs fail before any network call with
// ErrInvalidURL; exhaustion fails with *AllProvidersFailedError.
func (c *Cascade) Extract(ctx context.Context, rawURL string) (*models.PostRecord, string, error) {
	post, err := ParsePostURL(rawURL)
	if err != nil {
		return nil, "", err
	}

	attempts := c.attempts()
	var lastErr error
	for _, a := range attempts {
		rec, err := c.runAttempt(ctx, a, post)
		if err != nil {
			logger.WarnWithFields("provider attempt failed", logger.Fields{
				"provider": a.name,
				"post":     post.Shortcode,
				"error":    err.Error(),
			})
			lastErr = err
			continue
		}
		logger.InfoWithFields("extracted post content", logger.Fields{
			"provider": a.name,
			"username": rec.Username,
			"media":    len(rec.MediaURLs),
		})
		return rec, a.name, nil
	}

	return nil, "", &AllProvidersFailedError{Attempts: len(attempts), LastErr: lastErr}
}

func (c *Cascade) runAttempt(ctx context.Context, a attempt, post PostURL) (*models.PostRecord, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := a.fetch(ctx, c, post)
	if err != nil {
		return nil, err
	}

	rec, err := a.normalize(raw, post)
	if err != nil {
		return nil, err
	}
	if isEmptyRecord(rec) {
		return nil, errors.New("provider returned an empty record")
	}
	return rec, nil
}

// isEmptyRecord rejects records that carry nothing beyond the placeholder
// defaults; such a record would produce a useless page downstream.
func isEmptyRecord(rec *models.PostRecord) bool {
	return rec.Username == models.UnknownUsername && rec.Caption == "" && len(rec.MediaURLs) == 0
}

// attempts returns the cascade order. RapidAPI-backed providers come
// first; the keyless oEmbed and public page scrapes are last resorts.
func (c *Cascade) attempts() []attempt {
	return []attempt{
		{
			name: "looter-post",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.LooterBase + "/post?url=" + url.QueryEscape(post.Raw)
				return c.rapidAPIGet(ctx, u, "instagram-looter2.p.rapidapi.com")
			},
			normalize: normalizeLooterPost,
		},
		{
			name: "looter-post-dl",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.LooterBase + "/post-dl?url=" + url.QueryEscape(post.Raw)
				return c.rapidAPIGet(ctx, u, "instagram-looter2.p.rapidapi.com")
			},
			normalize: normalizeLooterDownload,
		},
		{
			name: "instagram120",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.Instagram120Base + "/api/instagram/post?url=" + url.QueryEscape(post.Raw)
				return c.rapidAPIGet(ctx, u, "instagram120.p.rapidapi.com")
			},
			normalize: normalizeInstagram120,
		},
		{
			name: "instagram-data1",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.Data1Base + "/post/info?post=" + url.QueryEscape(post.Shortcode)
				return c.rapidAPIGet(ctx, u, "instagram-data1.p.rapidapi.com")
			},
			normalize: normalizeInstagramData1,
		},
		{
			name: "instagram-scraper-2022",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.Scraper2022Base + "/ig/post_info/?shortcode=" + url.QueryEscape(post.Shortcode)
				return c.rapidAPIGet(ctx, u, "instagram-scraper-2022.p.rapidapi.com")
			},
			normalize: normalizeScraper2022,
		},
		{
			name: "oembed",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				u := c.Endpoints.OembedBase + "/oembed/?url=" + url.QueryEscape(post.Raw)
				return c.get(ctx, u, nil)
			},
			normalize: normalizeOembed,
		},
		{
			name: "public-page",
			fetch: func(ctx context.Context, c *Cascade, post PostURL) ([]byte, error) {
				segment := "/p/"
				if post.IsReel {
					segment = "/reel/"
				}
				return c.get(ctx, c.Endpoints.PublicPageBase+segment+post.Shortcode+"/", nil)
			},
			normalize: normalizePublicPage,
		},
	}
}

// rapidAPIGet issues a GET with the RapidAPI auth headers. Attempts are
// skipped (as failures) when no key is configured.
func (c *Cascade) rapidAPIGet(ctx context.Context, u, host string) ([]byte, error) {
	if c.RapidAPIKey == "" {
		return nil, errors.New("RAPID_API_KEY not configured")
	}
	return c.get(ctx, u, map[string]string{
		"X-RapidAPI-Key":  c.RapidAPIKey,
		"X-RapidAPI-Host": host,
	})
}

func (c *Cascade) get(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("provider responded with status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
