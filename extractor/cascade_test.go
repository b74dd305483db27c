package extractor_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"insta-archiver/extractor"
	"insta-archiver/logger"
)

func init() {
	logger.Init("error")
}

// panicTransport fails the test if any request escapes to the network.
type panicTransport struct{ t *testing.T }

func (p *panicTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	p.t.Fatalf("unexpected network call to %s", req.URL)
	return nil, nil
}

func TestExtractInvalidURLBeforeNetwork(t *testing.T) {
	c := extractor.New("key")
	c.HTTPClient = &http.Client{Transport: &panicTransport{t: t}}

	_, _, err := c.Extract(context.Background(), "https://www.instagram.com/someuser/")
	assert.ErrorIs(t, err, extractor.ErrInvalidURL)
}

// newTestCascade points every provider endpoint at the given server.
func newTestCascade(server *httptest.Server) *extractor.Cascade {
	c := extractor.New("test-key")
	c.HTTPClient = server.Client()
	c.Timeout = 5 * time.Second
	c.Endpoints = extractor.Endpoints{
		LooterBase:       server.URL,
		Instagram120Base: server.URL,
		Data1Base:        server.URL,
		Scraper2022Base:  server.URL,
		OembedBase:       server.URL,
		PublicPageBase:   server.URL,
	}
	return c
}

func TestExtractFirstProviderWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		w.Write([]byte(`{
			"status": true,
			"owner": {"username": "demo"},
			"edge_media_to_caption": {"edges": [{"node": {"text": "hello #test"}}]},
			"display_url": "https://cdn/cover.jpg"
		}`))
	}))
	defer server.Close()

	c := newTestCascade(server)
	rec, provider, err := c.Extract(context.Background(), "https://www.instagram.com/p/ABC123/")
	assert.NoError(t, err)
	assert.Equal(t, "looter-post", provider)
	assert.Equal(t, "demo", rec.Username)
	assert.Equal(t, "hello #test", rec.Caption)
	assert.Equal(t, []string{"https://cdn/cover.jpg"}, rec.MediaURLs)
}

func TestExtractFallsThroughToNextProvider(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/post" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/post-dl" {
			w.Write([]byte(`{"status": true, "data": {"username": "demo", "caption": "second try", "medias": [{"link": "https://cdn/a.jpg"}]}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestCascade(server)
	rec, provider, err := c.Extract(context.Background(), "https://www.instagram.com/p/ABC123/")
	assert.NoError(t, err)
	assert.Equal(t, "looter-post-dl", provider)
	assert.Equal(t, "second try", rec.Caption)
	assert.Equal(t, 2, calls, "cascade stops at the first success")
}

func TestExtractAllProvidersFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestCascade(server)
	_, _, err := c.Extract(context.Background(), "https://www.instagram.com/p/ABC123/")

	var exhausted *extractor.AllProvidersFailedError
	assert.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 7, exhausted.Attempts)
	assert.Error(t, exhausted.LastErr)
}

func TestExtractEmptyRecordTreatedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid shape, but carries no username, caption, or media.
		w.Write([]byte(`{"status": true}`))
	}))
	defer server.Close()

	c := newTestCascade(server)
	_, _, err := c.Extract(context.Background(), "https://www.instagram.com/p/ABC123/")

	var exhausted *extractor.AllProvidersFailedError
	assert.ErrorAs(t, err, &exhausted)
}
