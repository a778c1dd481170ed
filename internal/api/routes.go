package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/contentforge/seo_editor/internal/api/handlers"
	"github.com/contentforge/seo_editor/internal/api/middleware"
	ws "github.com/contentforge/seo_editor/internal/api/websocket"
	"github.com/contentforge/seo_editor/internal/config"
	"github.com/contentforge/seo_editor/internal/database"
	"github.com/contentforge/seo_editor/internal/repository"
	"github.com/contentforge/seo_editor/internal/repository/cache"
	"github.com/contentforge/seo_editor/internal/service/ai"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *database.DatabaseClient, redisClient *database.RedisClient, aiService *ai.Service, cfg *config.Config) {
	repos := repository.NewRepositoryFactory(db.DB)

	var cacheRepo *cache.Repository
	if redisClient != nil {
		cacheRepo = cache.NewRepository(redisClient.Client, cfg.CacheTTL)
	}

	hub := ws.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg)
	analysisHandler := handlers.NewAnalysisHandler(cfg, repos.ScoreRepository, cacheRepo, aiService, hub)

	// API group
	api := app.Group("/api")

	// Health check route
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Session tokens
	auth := api.Group("/auth")
	auth.Post("/session", authHandler.CreateSession)

	// Analysis routes
	api.Post("/analyze", middleware.JWTMiddleware(cfg), analysisHandler.AnalyzeContent)
	api.Post("/keywords", middleware.JWTMiddleware(cfg), analysisHandler.SuggestKeywords)
	api.Post("/highlights", middleware.JWTMiddleware(cfg), analysisHandler.ApplyHighlights)
	api.Get("/scores/:fingerprint", middleware.JWTMiddleware(cfg), analysisHandler.GetScoreHistory)

	// WebSocket endpoint for real-time analysis and highlight updates
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws/session/:id", websocket.New(analysisHandler.HandleWebSocket))
}
