package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insta-archiver/api/handlers"
	"insta-archiver/api/middleware"
	"insta-archiver/pipeline"
	"insta-archiver/repositories"
)

// New builds the HTTP surface: the submission form, the processing
// endpoint, and read access to the archive. The archives repository is nil
// when no MongoDB is configured; its routes are simply not registered.
func New(p *pipeline.Pipeline, archives *repositories.ArchiveRepository) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestTrace())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.StaticFile("/", "./web/index.html")
	r.POST("/process", handlers.ProcessHandler(p))

	if archives != nil {
		api := r.Group("/api/v1")
		api.GET("/archives", handlers.ListArchivesHandler(archives))
	}

	return r
}
