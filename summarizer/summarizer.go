package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"insta-archiver/config"
	"insta-archiver/models"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

// PROMPT_TEMPLATE is the single completion prompt. The **TAGS:** block and
// its six bracketed categories are a contract with the tagger package;
// change them together.
const PROMPT_TEMPLATE = `Please provide a comprehensive analysis of this Instagram %s post:

Username: @%s
Caption: %s
URL: %s
%s
Create a detailed summary that includes:
1. Main message and key points from the caption
2. Visual elements and design insights (if images were analyzed)
3. Target audience and purpose
4. Overall impact and takeaways

Then provide categorized tags in EXACTLY this format (copy the structure exactly):

**TAGS:**
Content Type: [educational, promotional, personal, lifestyle, tutorial, behind-the-scenes, announcement, showcase]
Industry: [technology, fashion, fitness, food, travel, business, art, music, health, photography, design]
Audience: [professionals, students, creators, entrepreneurs, general-public, influencers, artists]
Mood: [inspiring, informative, entertaining, motivational, casual, professional, humorous, serious]
Format: [carousel, single-post, video, reel, story-highlight, user-generated-content]
Topics: [specific relevant topics based on content, separated by commas]

IMPORTANT:
- Use EXACTLY the format above with square brackets
- Choose 1-3 items per category that best fit the content
- For Topics, list 3-5 specific relevant keywords
- Keep tags concise and relevant
- Always include the **TAGS:** header exactly as shown

Keep the summary informative and well-structured.`

// SummarizationError is returned when the completion backend fails or
// answers without any choice. It is surfaced to the caller; there is no
// fallback summary.
type SummarizationError struct {
	Provider string
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization via %s failed: %v", e.Provider, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// Summarizer produces the free-text narrative plus embedded tag block for a
// normalized post record.
type Summarizer struct {
	Provider  string
	ModelName string
	MaxTokens int

	DeepSeekAPIKey string
	GeminiAPIKey   string

	// BaseURL overrides the OpenAI-compatible endpoint; tests point it at
	// an httptest server.
	BaseURL string
}

func New(cfg config.AppConfig) *Summarizer {
	maxTokens := cfg.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 700
	}
	return &Summarizer{
		Provider:       cfg.LLM.Provider,
		ModelName:      cfg.LLM.ModelName,
		MaxTokens:      maxTokens,
		DeepSeekAPIKey: cfg.DeepSeekAPIKey,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		BaseURL:        deepSeekBaseURL,
	}
}

// BuildPrompt renders the completion prompt for a record. The image
// analysis section is omitted entirely when empty.
func BuildPrompt(rec *models.PostRecord, imageAnalysis string) string {
	kind := "post"
	if rec.IsReel() {
		kind = "reel"
	}
	if rec.MediaType != "" {
		kind = strings.ToLower(rec.MediaType)
	}

	analysisSection := ""
	if imageAnalysis != "" {
		analysisSection = fmt.Sprintf("\nImage Analysis: %s\n", imageAnalysis)
	}

	return fmt.Sprintf(PROMPT_TEMPLATE, kind, rec.Username, rec.Caption, rec.URL, analysisSection)
}

// Summarize issues one completion request and returns the raw model output
// together with a call log for auditing. No retries.
func (s *Summarizer) Summarize(ctx context.Context, rec *models.PostRecord, imageAnalysis string) (string, *models.LLMCallLog, error) {
	prompt := BuildPrompt(rec, imageAnalysis)

	switch s.Provider {
	case "", "deepseek":
		return s.summarizeOpenAI(ctx, prompt)
	case "google":
		return s.summarizeGemini(ctx, prompt)
	default:
		return "", nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}

func (s *Summarizer) summarizeOpenAI(ctx context.Context, prompt string) (string, *models.LLMCallLog, error) {
	if s.DeepSeekAPIKey == "" {
		return "", nil, &SummarizationError{Provider: "deepseek", Err: fmt.Errorf("DEEPSEEK_API_KEY is not set")}
	}

	clientCfg := openai.DefaultConfig(s.DeepSeekAPIKey)
	clientCfg.BaseURL = s.BaseURL
	client := openai.NewClientWithConfig(clientCfg)

	model := s.ModelName
	if model == "" {
		model = "deepseek-chat"
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", nil, &SummarizationError{Provider: "deepseek", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil, &SummarizationError{Provider: "deepseek", Err: fmt.Errorf("completion returned no choices")}
	}

	callLog := &models.LLMCallLog{
		ModelName:    model,
		LatencyMs:    time.Since(start).Milliseconds(),
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		TotalTokens:  int64(resp.Usage.TotalTokens),
		RequestedAt:  start,
		CompletedAt:  time.Now(),
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), callLog, nil
}

func (s *Summarizer) summarizeGemini(ctx context.Context, prompt string) (string, *models.LLMCallLog, error) {
	if s.GeminiAPIKey == "" {
		return "", nil, &SummarizationError{Provider: "google", Err: fmt.Errorf("GEMINI_API_KEY is not set")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.GeminiAPIKey,
	})
	if err != nil {
		return "", nil, &SummarizationError{Provider: "google", Err: err}
	}

	model := s.ModelName
	if model == "" {
		model = "gemini-2.0-flash"
	}

	start := time.Now()
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", nil, &SummarizationError{Provider: "google", Err: err}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", nil, &SummarizationError{Provider: "google", Err: fmt.Errorf("completion returned no candidates")}
	}

	callLog := &models.LLMCallLog{
		ModelName:   model,
		LatencyMs:   time.Since(start).Milliseconds(),
		RequestedAt: start,
		CompletedAt: time.Now(),
	}
	if result.UsageMetadata != nil {
		callLog.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		callLog.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		callLog.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
	}

	return text, callLog, nil
}
