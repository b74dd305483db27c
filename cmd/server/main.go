package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"

	"insta-archiver/api/router"
	"insta-archiver/config"
	"insta-archiver/db"
	"insta-archiver/logger"
	"insta-archiver/pipeline"
	"insta-archiver/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	var archive pipeline.Archiver
	var archiveRepo *repositories.ArchiveRepository
	if cfg.MongoURI != "" {
		if err := db.Init(context.Background()); err != nil {
			logger.WarnWithFields("archive unavailable, continuing without it", logger.Fields{"error": err.Error()})
		} else {
			archiveRepo = repositories.NewArchiveRepository(db.Database())
			archive = archiveRepo
		}
	}

	p := pipeline.Build(cfg, archive)
	r := router.New(p, archiveRepo)

	port := cfg.Server.Port
	if port == 0 {
		port = 3000
	}
	addr := fmt.Sprintf(":%d", port)

	handler := cors.Default().Handler(r)
	logger.InfoWithFields("web server listening", logger.Fields{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil && err != http.ErrServerClosed {
		logger.ErrorWithFields("server stopped", logger.Fields{"error": err.Error()})
	}
}
