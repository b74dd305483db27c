package summarizer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"insta-archiver/models"
	"insta-archiver/summarizer"
)

func testRecord() *models.PostRecord {
	return &models.PostRecord{
		URL:       "https://www.instagram.com/p/ABC123/",
		Username:  "demo",
		Caption:   "hello #test",
		MediaURLs: []string{"https://cdn/cover.jpg"},
		MediaType: "IMAGE",
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := summarizer.BuildPrompt(testRecord(), "")
	assert.Contains(t, prompt, "Instagram image post")
	assert.Contains(t, prompt, "Username: @demo")
	assert.Contains(t, prompt, "Caption: hello #test")
	assert.Contains(t, prompt, "**TAGS:**")
	assert.NotContains(t, prompt, "Image Analysis:", "analysis section is omitted when empty")
}

func TestBuildPromptWithAnalysis(t *testing.T) {
	prompt := summarizer.BuildPrompt(testRecord(), "Two bright images.")
	assert.Contains(t, prompt, "Image Analysis: Two bright images.")
}

func TestBuildPromptReel(t *testing.T) {
	rec := &models.PostRecord{URL: "https://www.instagram.com/reel/XYZ/", Username: "demo"}
	assert.Contains(t, summarizer.BuildPrompt(rec, ""), "Instagram reel post")
}

func TestSummarizeDeepSeek(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "A summary.\n\n**TAGS:**\nTopics: [testing]"}}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
		}`))
	}))
	defer server.Close()

	s := &summarizer.Summarizer{
		Provider:       "deepseek",
		ModelName:      "deepseek-chat",
		MaxTokens:      700,
		DeepSeekAPIKey: "test-key",
		BaseURL:        server.URL,
	}

	text, callLog, err := s.Summarize(context.Background(), testRecord(), "")
	assert.NoError(t, err)
	assert.Contains(t, text, "A summary.")
	assert.Contains(t, text, "**TAGS:**")
	assert.Equal(t, int64(100), callLog.InputTokens)
	assert.Equal(t, int64(50), callLog.OutputTokens)
	assert.Equal(t, int64(150), callLog.TotalTokens)
	assert.Equal(t, "deepseek-chat", callLog.ModelName)
	assert.False(t, callLog.RequestedAt.IsZero())
}

func TestSummarizeNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	s := &summarizer.Summarizer{DeepSeekAPIKey: "test-key", BaseURL: server.URL}
	_, _, err := s.Summarize(context.Background(), testRecord(), "")

	var serr *summarizer.SummarizationError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, "deepseek", serr.Provider)
}

func TestSummarizeMissingKey(t *testing.T) {
	s := &summarizer.Summarizer{Provider: "deepseek"}
	_, _, err := s.Summarize(context.Background(), testRecord(), "")

	var serr *summarizer.SummarizationError
	assert.ErrorAs(t, err, &serr)
}

func TestSummarizeUnsupportedProvider(t *testing.T) {
	s := &summarizer.Summarizer{Provider: "anthropic"}
	_, _, err := s.Summarize(context.Background(), testRecord(), "")
	assert.ErrorContains(t, err, "unsupported LLM provider")
}
