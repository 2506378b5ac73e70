package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rogame/backend/internal/middleware"
	"github.com/rogame/backend/pkg/config"
)

func SetupRouter(
	gameHandler *GameHandler,
	saveHandler *SaveHandler,
	settingsHandler *SettingsHandler,
	healthHandler *HealthHandler,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (in order)
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimiter))

	// CORS middleware (the desktop frontend runs on its own origin)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health and metrics
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	expensive := middleware.RateLimitMiddleware(middleware.ExpensiveRateLimiter)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/scan", expensive, gameHandler.ScanGames)

		games := apiGroup.Group("/games")
		{
			games.GET("", gameHandler.ListGames)
			games.POST("", gameHandler.ImportGame)
			games.POST("/custom", gameHandler.ImportCustomGame)
			games.GET("/:id", gameHandler.GetGame)
			games.DELETE("/:id", gameHandler.DeleteGame)
			games.POST("/:id/favorite", gameHandler.ToggleFavorite)
			games.PUT("/:id/save-location", gameHandler.UpdateSaveLocation)

			games.POST("/:id/backups", expensive, saveHandler.CreateBackup)
			games.GET("/:id/backups", saveHandler.ListSaves)
			games.DELETE("/:id/backups", saveHandler.DeleteGameSaves)
			games.POST("/:id/backups/:save_id/restore", expensive, saveHandler.RestoreSave)
			games.DELETE("/:id/backups/:save_id", saveHandler.DeleteSave)
		}

		settings := apiGroup.Group("/settings")
		{
			settings.GET("/backup", settingsHandler.GetSettings)
			settings.PUT("/backup", settingsHandler.UpdateSettings)
			settings.GET("/backup/worker", settingsHandler.WorkerStats)
		}
	}

	return router
}
