package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insta-archiver/extractor"
	"insta-archiver/pipeline"
	"insta-archiver/repositories"
	"insta-archiver/tagger"
)

// ProcessRequest is the submission body for one post URL.
type ProcessRequest struct {
	URL string `json:"url" binding:"required"`
}

// ProcessHandler runs the full pipeline for a submitted post URL.
func ProcessHandler(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProcessRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url is required"})
			return
		}

		res, err := p.Process(c.Request.Context(), req.URL, "web")
		if err != nil {
			status := http.StatusInternalServerError
			var exhausted *extractor.AllProvidersFailedError
			switch {
			case errors.Is(err, extractor.ErrInvalidURL):
				status = http.StatusBadRequest
			case errors.As(err, &exhausted):
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"username":        res.Record.Username,
			"provider":        res.Provider,
			"summary":         res.Summary,
			"tags":            tagger.Names(res.Tags),
			"notion_page_url": res.NotionPageURL,
		})
	}
}

// ListArchivesHandler returns recent archive snapshots, newest first.
func ListArchivesHandler(repo *repositories.ArchiveRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		items, err := repo.ListRecent(c.Request.Context(), int64(limit))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
