package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insta-archiver/config"
	"insta-archiver/db"
	"insta-archiver/logger"
	"insta-archiver/monitor"
	"insta-archiver/pipeline"
	"insta-archiver/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if cfg.InboxBridgeURL == "" {
		logger.Log.Error("INBOX_BRIDGE_URL is not set; the monitor needs an inbox bridge to read DMs")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var archive pipeline.Archiver
	if cfg.MongoURI != "" {
		if err := db.Init(ctx); err != nil {
			logger.WarnWithFields("archive unavailable, continuing without it", logger.Fields{"error": err.Error()})
		} else {
			archive = repositories.NewArchiveRepository(db.Database())
		}
	}

	stateFile := cfg.Monitor.StateFile
	if stateFile == "" {
		stateFile = "processed_messages.json"
	}
	store, err := monitor.NewProcessedStore(stateFile)
	if err != nil {
		logger.ErrorWithFields("failed to open processed-message state", logger.Fields{
			"file":  stateFile,
			"error": err.Error(),
		})
		os.Exit(1)
	}

	m := &monitor.Monitor{
		Inbox: &monitor.HTTPInboxClient{
			BaseURL: cfg.InboxBridgeURL,
			Token:   cfg.InboxBridgeToken,
		},
		Store:        store,
		Processor:    pipeline.Build(cfg, archive),
		Interval:     time.Duration(cfg.Monitor.IntervalSeconds) * time.Second,
		ThreadAmount: cfg.Monitor.ThreadAmount,
	}

	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithFields("monitor stopped", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
}
