package pipeline

import (
	"time"

	"insta-archiver/config"
	"insta-archiver/extractor"
	"insta-archiver/notion"
	"insta-archiver/summarizer"
	"insta-archiver/vision"
)

// Build assembles the production pipeline from config. The archiver is
// passed in because MongoDB is optional and its lifecycle belongs to the
// entrypoint.
func Build(cfg config.AppConfig, archive Archiver) *Pipeline {
	cascade := extractor.New(cfg.RapidAPIKey)
	if cfg.Extractor.TimeoutSeconds > 0 {
		cascade.Timeout = time.Duration(cfg.Extractor.TimeoutSeconds) * time.Second
	}

	return &Pipeline{
		Extractor: cascade,
		Analyzer:  vision.New(cfg),
		Summarize: summarizer.New(cfg),
		Store:     notion.New(cfg),
		Archive:   archive,
	}
}
