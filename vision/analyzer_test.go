package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeNoImages(t *testing.T) {
	a := &Analyzer{}
	assert.Equal(t, "No images to analyze.", a.Analyze(context.Background(), nil))
}

func TestRejected(t *testing.T) {
	assert.True(t, rejected("too short"), "responses under the length floor are rejected")
	assert.True(t, rejected("I'm sorry, but I am unable to view images directly in this conversation right now."))
	assert.True(t, rejected(strings.Repeat("x", 40)+" I cannot analyze these images."))
	assert.False(t, rejected(strings.Repeat("a detailed description ", 10)))
}

func TestAnalyzeWithoutKeyUsesHeuristic(t *testing.T) {
	a := &Analyzer{MaxImages: 3}
	got := a.Analyze(context.Background(), []string{"https://cdn/photo_1080x1350.jpg"})
	assert.Contains(t, got, "Image 1:")
	assert.Contains(t, got, "High-resolution portrait format (1080x1350).")
	assert.Contains(t, got, "Primary/cover image.")
	assert.Contains(t, got, "Summary: 1 image(s) total.")
}

func TestAnalyzeShortVisionResponseFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"too short"}}]}`))
	}))
	defer server.Close()

	a := &Analyzer{
		APIKey:     "key",
		ModelName:  "test-model",
		MaxImages:  3,
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}
	got := a.Analyze(context.Background(), []string{"https://cdn/photo_1080x1080.jpg"})
	assert.Contains(t, got, "Square format (1080x1080).")
	assert.Contains(t, got, "Professional Instagram-optimized format.")
}

func TestAnalyzeVisionSuccess(t *testing.T) {
	answer := strings.Repeat("The first image shows a blue gradient poster. ", 3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Archiver", r.Header.Get("X-Title"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + strings.TrimSpace(answer) + `"}}]}`))
	}))
	defer server.Close()

	a := &Analyzer{
		APIKey:     "key",
		ModelName:  "test-model",
		MaxImages:  2,
		SiteURL:    "https://example.com",
		SiteName:   "Archiver",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	}
	got := a.Analyze(context.Background(), []string{"https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg"})
	assert.Contains(t, got, "blue gradient poster")
}

func TestExtractTextOCR(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn/1.jpg", r.PostForm.Get("url"))
		assert.Equal(t, "eng", r.PostForm.Get("language"))
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"SALE 50% OFF  "}]}`))
	}))
	defer server.Close()

	a := &Analyzer{OCREndpoint: server.URL, OCRAPIKey: "helloworld", HTTPClient: server.Client()}
	assert.Equal(t, "SALE 50% OFF", a.extractTextOCR(context.Background(), "https://cdn/1.jpg"))
}

func TestExtractTextOCRFailuresReturnEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a := &Analyzer{OCREndpoint: server.URL, HTTPClient: server.Client()}
	assert.Equal(t, "", a.extractTextOCR(context.Background(), "https://cdn/1.jpg"))

	a = &Analyzer{OCREndpoint: ""}
	assert.Equal(t, "", a.extractTextOCR(context.Background(), "https://cdn/1.jpg"))
}
