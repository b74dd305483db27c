// Package pipeline wires extraction, analysis, summarization, tagging, and
// persistence into the single post-processing flow every entrypoint uses.
package pipeline

import (
	"context"
	"time"

	"insta-archiver/logger"
	"insta-archiver/models"
	"insta-archiver/tagger"
)

// Extractor resolves a post URL to a normalized record and names the
// provider that produced it.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*models.PostRecord, string, error)
}

// ImageAnalyzer describes a post's images. It never fails; degraded paths
// return best-effort text.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageURLs []string) string
}

// Summarizer produces the narrative plus tag block for a record.
type Summarizer interface {
	Summarize(ctx context.Context, rec *models.PostRecord, imageAnalysis string) (string, *models.LLMCallLog, error)
}

// PageStore persists a processed post and returns the page ID and URL.
type PageStore interface {
	CreatePage(ctx context.Context, rec *models.PostRecord, summary, imageAnalysis string, tags []models.Tag) (string, string, error)
}

// Archiver snapshots processed posts into the local archive. Optional;
// archive failures never fail the pipeline.
type Archiver interface {
	Archive(ctx context.Context, post *models.ArchivedPost) error
}

// Result is everything one pipeline run produced.
type Result struct {
	Record        *models.PostRecord
	Provider      string
	Summary       string
	ImageAnalysis string
	Tags          []models.Tag
	NotionPageID  string
	NotionPageURL string
	CallLog       *models.LLMCallLog
}

// Pipeline processes one post URL end to end. Stages run strictly in
// sequence; extraction, summarization, and persistence failures abort the
// run, image analysis and archiving never do.
type Pipeline struct {
	Extractor Extractor
	Analyzer  ImageAnalyzer
	Summarize Summarizer
	Store     PageStore
	Archive   Archiver

	// Now is injectable for deterministic metadata tags in tests.
	Now func() time.Time
}

// Process runs the full flow for one URL. Source names the ingestion path
// (cli, web, dm-monitor) and ends up in the tag set and archive record.
func (p *Pipeline) Process(ctx context.Context, rawURL, source string) (*Result, error) {
	started := time.Now()

	rec, provider, err := p.Extractor.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	imageAnalysis := ""
	if p.Analyzer != nil && len(rec.MediaURLs) > 0 {
		imageAnalysis = p.Analyzer.Analyze(ctx, rec.MediaURLs)
	}

	summary, callLog, err := p.Summarize.Summarize(ctx, rec, imageAnalysis)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	tags := tagger.Collect(rec, summary, imageAnalysis, source, now)

	pageID, pageURL, err := p.Store.CreatePage(ctx, rec, summary, imageAnalysis, tags)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Record:        rec,
		Provider:      provider,
		Summary:       summary,
		ImageAnalysis: imageAnalysis,
		Tags:          tags,
		NotionPageID:  pageID,
		NotionPageURL: pageURL,
		CallLog:       callLog,
	}

	if p.Archive != nil {
		if err := p.Archive.Archive(ctx, archivedPost(res, source)); err != nil {
			logger.WarnWithFields("archive write failed", logger.Fields{
				"post":  rec.URL,
				"error": err.Error(),
			})
		}
	}

	logger.InfoWithFields("post processed", logger.Fields{
		"post":       rec.URL,
		"provider":   provider,
		"tags":       len(tags),
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	return res, nil
}

func archivedPost(res *Result, source string) *models.ArchivedPost {
	archived := &models.ArchivedPost{
		PostURL:       res.Record.URL,
		Username:      res.Record.Username,
		Caption:       res.Record.Caption,
		MediaType:     res.Record.MediaType,
		MediaURLs:     res.Record.MediaURLs,
		PostedAt:      res.Record.Timestamp,
		Summary:       res.Summary,
		ImageAnalysis: res.ImageAnalysis,
		Tags:          tagger.Names(res.Tags),
		NotionPageID:  res.NotionPageID,
		NotionPageURL: res.NotionPageURL,
		Provider:      res.Provider,
		Source:        source,
	}
	if res.CallLog != nil {
		archived.AILog = *res.CallLog
	}
	return archived
}
