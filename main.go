package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"insta-archiver/config"
	"insta-archiver/db"
	"insta-archiver/logger"
	"insta-archiver/pipeline"
	"insta-archiver/repositories"
)

func main() {
	urlFlag := flag.String("url", "", "Instagram post or reel URL to process")
	flag.Parse()

	rawURL := *urlFlag
	if rawURL == "" && flag.NArg() > 0 {
		rawURL = flag.Arg(0)
	}
	if rawURL == "" {
		fmt.Fprintln(os.Stderr, "usage: insta-archiver [--url] <instagram-post-url>")
		os.Exit(1)
	}

	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := context.Background()

	var archive pipeline.Archiver
	if cfg.MongoURI != "" {
		if err := db.Init(ctx); err != nil {
			logger.WarnWithFields("archive unavailable, continuing without it", logger.Fields{"error": err.Error()})
		} else {
			archive = repositories.NewArchiveRepository(db.Database())
		}
	}

	p := pipeline.Build(cfg, archive)

	res, err := p.Process(ctx, rawURL, "cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	summary := res.Summary
	if len(summary) > 400 {
		cut := 400
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "..."
	}
	fmt.Printf("Processed @%s via %s\n\n%s\n\nSaved to Notion: %s\n", res.Record.Username, res.Provider, summary, res.NotionPageURL)
}
