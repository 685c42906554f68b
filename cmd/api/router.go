package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Forwarding headers identify the client only behind a configured proxy.
	if err := router.SetTrustedProxies(c.Config.App.TrustedProxies); err != nil {
		log.Error().Err(err).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.Metrics(),
	)

	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", c.BookHandler.Home)

	setupAuthorRoutes(router, c)
	setupBookRoutes(router, c)
	setupRecommendRoutes(router, c)

	return router
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(r *gin.Engine, c *container.Container) {
	authors := r.Group("/authors")
	{
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/add", c.AuthorHandler.AddForm)
		authors.POST("/add", c.AuthorHandler.Create)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.POST("/:id/delete", c.AuthorHandler.Delete)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(r *gin.Engine, c *container.Container) {
	books := r.Group("/books")
	{
		books.GET("/add", c.BookHandler.AddForm)
		books.POST("/add", c.BookHandler.Create)
		books.GET("/:id", c.BookHandler.GetByID)
		books.GET("/:id/edit", c.BookHandler.EditForm)
		books.POST("/:id/edit", c.BookHandler.Edit)
		books.POST("/:id/rate", c.BookHandler.Rate)
		books.POST("/:id/delete", c.BookHandler.Delete)
	}
}

// ========================================
// RECOMMEND ROUTES
// ========================================
func setupRecommendRoutes(r *gin.Engine, c *container.Container) {
	recommend := r.Group("/recommend")
	{
		recommend.GET("", c.RecommendHandler.Show)
		recommend.POST("", middleware.RateLimit("recommend", c.RecommendLimiter), c.RecommendHandler.Generate)
		recommend.POST("/add", c.RecommendHandler.Add)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = err.Error()
		}

		redisStatus := "disabled"
		if c.Redis != nil {
			redisStatus = "ok"
			if err := c.Redis.HealthCheck(checkCtx); err != nil {
				redisStatus = err.Error()
			}
		}

		ctx.JSON(status, gin.H{
			"success": status == http.StatusOK,
			"data": gin.H{
				"status":                      http.StatusText(status),
				"environment":                 c.Config.App.Environment,
				"version":                     c.Config.App.Version,
				"database":                    dbStatus,
				"dialect":                     c.DB.Dialect,
				"redis":                       redisStatus,
				"ai_configured":               c.AI.Configured(),
				"image_processing_configured": c.Config.App.ProcessingImageURL != "",
			},
		})
	}
}
