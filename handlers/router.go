package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "querygpt/docs" // Swagger docs
	"querygpt/logging"
	"querygpt/models"
	"querygpt/web"
)

// NewRouter wires the pages, the JSON API, swagger and health endpoints.
func NewRouter(h *Handlers, allowedOrigins []string) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	corsCfg := corsConfig(allowedOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors settings: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(h.logger), apiCORS(corsCfg))
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = h.maxUploadBytes

	r.StaticFS("/static", web.Static())
	r.GET("/health", h.HealthHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	pages := r.Group("/", h.SessionMiddleware())
	pages.GET(uploadRoute, h.UploadPageHandler)
	pages.POST("/upload", h.UploadSubmitHandler)
	pages.GET(chatRoute, h.ChatPageHandler)
	pages.POST(chatRoute, h.ChatSubmitHandler)

	api := r.Group("/api", h.SessionMiddleware())
	api.POST("/upload", h.APIUploadHandler)
	api.POST("/query", h.APIQueryHandler)
	api.GET("/collections", h.ListCollectionsHandler)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
			return
		}
		c.Redirect(http.StatusFound, uploadRoute)
	})

	return r, nil
}

// apiCORS runs at engine level so preflight requests, which match no route,
// still get answered.
func apiCORS(config cors.Config) gin.HandlerFunc {
	handler := cors.New(config)
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler(c)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept"}
	config.MaxAge = 12 * time.Hour

	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	return config
}
