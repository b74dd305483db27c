package vision

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"insta-archiver/config"
	"insta-archiver/logger"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// minAnalysisLength is the floor below which a vision response is treated
// as a refusal even when the HTTP call succeeded.
const minAnalysisLength = 50

// refusalPhrases mark responses where the model received the request but
// could not actually see the images.
var refusalPhrases = []string{
	"unable to view",
	"can't analyze",
	"cannot analyze",
}

const visionPromptTemplate = `Analyze these Instagram images from a carousel post and provide detailed insights about:

This post contains %d total images, but you're analyzing the first %d images.

For each image you can see, describe:
1. Visual content, objects, and composition
2. Design elements (colors, typography, layout, visual style)
3. Any specific color palettes, hex codes, or color combinations shown
4. Text, graphics, or branding visible
5. How each image relates to the overall theme

Then provide an overall summary focusing on:
- Main subject matter and theme of the entire post
- Aesthetic style and creative approach
- What makes this content engaging or notable
- Any patterns or consistency across the images

Please be specific about what you actually see in each image and note that there may be additional images in the full carousel.`

// Analyzer describes a post's images. The primary path is a vision
// completion call; every failure mode degrades to the heuristic fallback,
// so Analyze always returns a non-empty description.
type Analyzer struct {
	APIKey    string
	ModelName string
	MaxImages int
	SiteURL   string
	SiteName  string

	// BaseURL and OCREndpoint are overridable for tests.
	BaseURL     string
	OCREndpoint string
	OCRAPIKey   string
	HTTPClient  *http.Client
}

func New(cfg config.AppConfig) *Analyzer {
	maxImages := cfg.Vision.MaxImages
	if maxImages <= 0 {
		maxImages = 3
	}
	model := cfg.Vision.ModelName
	if model == "" {
		model = "qwen/qwen2.5-vl-32b-instruct:free"
	}
	return &Analyzer{
		APIKey:      cfg.OpenRouterAPIKey,
		ModelName:   model,
		MaxImages:   maxImages,
		SiteURL:     cfg.SiteURL,
		SiteName:    cfg.SiteName,
		BaseURL:     openRouterBaseURL,
		OCREndpoint: defaultOCREndpoint,
		OCRAPIKey:   "helloworld",
		HTTPClient:  &http.Client{},
	}
}

// Analyze describes up to MaxImages of the given image URLs. It has no
// hard-failure exit: an empty input yields a fixed sentence and every
// vision failure falls back to the heuristic path.
func (a *Analyzer) Analyze(ctx context.Context, imageURLs []string) string {
	if len(imageURLs) == 0 {
		return "No images to analyze."
	}

	if a.APIKey == "" {
		logger.Log.Info("no vision API key configured, using heuristic image analysis")
		return a.analyzeHeuristically(ctx, imageURLs)
	}

	analysis, err := a.analyzeWithVision(ctx, imageURLs)
	if err != nil {
		logger.WarnWithFields("vision analysis failed, falling back", logger.Fields{"error": err.Error()})
		return a.analyzeHeuristically(ctx, imageURLs)
	}
	if rejected(analysis) {
		logger.WarnWithFields("vision response rejected as generic/limited, falling back", logger.Fields{
			"length": len(analysis),
		})
		return a.analyzeHeuristically(ctx, imageURLs)
	}

	return analysis
}

// rejected applies the content-based failure check: short answers and
// stock refusal phrases count as failures regardless of HTTP status.
func rejected(analysis string) bool {
	if len(analysis) < minAnalysisLength {
		return true
	}
	lower := strings.ToLower(analysis)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (a *Analyzer) analyzeWithVision(ctx context.Context, imageURLs []string) (string, error) {
	subset := imageURLs
	if len(subset) > a.MaxImages {
		subset = subset[:a.MaxImages]
	}

	clientCfg := openai.DefaultConfig(a.APIKey)
	clientCfg.BaseURL = a.BaseURL
	clientCfg.HTTPClient = a.httpClientWithHeaders()
	client := openai.NewClientWithConfig(clientCfg)

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf(visionPromptTemplate, len(imageURLs), len(subset)),
		},
	}
	for _, u := range subset {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: u},
		})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// httpClientWithHeaders wraps the client so every request carries the
// attribution headers OpenRouter expects.
func (a *Analyzer) httpClientWithHeaders() *http.Client {
	base := a.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	referer := a.SiteURL
	if referer == "" {
		referer = "https://localhost:3000"
	}
	title := a.SiteName
	if title == "" {
		title = "Instagram Content Analyzer"
	}
	return &http.Client{
		Timeout: base.Timeout,
		Transport: &headerTransport{
			base:    base.Transport,
			referer: referer,
			title:   title,
		},
	}
}

type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)
	rt := t.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}
