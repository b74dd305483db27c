package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"insta-archiver/logger"
)

const defaultOCREndpoint = "https://api.ocr.space/parse/imageurl"

// heuristicImageCap bounds how many images get a URL-pattern description
// in the fallback path.
const heuristicImageCap = 6

// analyzeHeuristically builds a best-effort description from URL patterns
// and a single OCR pass over the first image. It never fails; OCR errors
// are swallowed.
func (a *Analyzer) analyzeHeuristically(ctx context.Context, imageURLs []string) string {
	var analyses []string

	capped := imageURLs
	if len(capped) > heuristicImageCap {
		capped = capped[:heuristicImageCap]
	}
	for i, imageURL := range capped {
		var b strings.Builder
		fmt.Fprintf(&b, "Image %d: ", i+1)

		if strings.Contains(imageURL, "1080x1350") {
			b.WriteString("High-resolution portrait format (1080x1350). ")
		} else if strings.Contains(imageURL, "1080x1080") {
			b.WriteString("Square format (1080x1080). ")
		}
		if strings.Contains(imageURL, "carousel") {
			b.WriteString("Part of carousel/slideshow. ")
		}
		if i == 0 {
			b.WriteString("Primary/cover image. ")
		}
		b.WriteString("Professional Instagram-optimized format.")

		analyses = append(analyses, b.String())
	}

	if text := a.extractTextOCR(ctx, imageURLs[0]); text != "" {
		analyses = append(analyses, fmt.Sprintf("Extracted text: %q", text))
	}

	summary := fmt.Sprintf("\nSummary: %d image(s) total. Professional Instagram content with optimized formatting.", len(imageURLs))
	return strings.Join(analyses, "\n") + summary
}

type ocrResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// extractTextOCR runs one best-effort OCR call. Any failure returns the
// empty string; the fallback analysis simply proceeds without it.
func (a *Analyzer) extractTextOCR(ctx context.Context, imageURL string) string {
	if a.OCREndpoint == "" {
		return ""
	}

	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("apikey", a.OCRAPIKey)
	form.Set("language", "eng")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.OCREndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := a.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Log.Debug("OCR unavailable, using basic analysis only")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.ParsedResults) == 0 {
		return ""
	}

	text := strings.TrimSpace(parsed.ParsedResults[0].ParsedText)
	if len(text) > 300 {
		text = text[:300]
	}
	return text
}
