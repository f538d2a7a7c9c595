// ~/Documents/CODING/tyriatrack/main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"
	"tyriatrack/database"
	"tyriatrack/gw2"
	"tyriatrack/handlers"
	"tyriatrack/middleware"
	"tyriatrack/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize database
	database.InitDB()

	// GW2 API client shared by the sync pipeline and the account proxy
	client := gw2.NewClient(gw2.Config{
		BaseURL: os.Getenv("GW2_API_URL"),
	})
	handlers.Init(client)

	// Initialize services
	services.InitEventHub()
	services.InitSnapshotService()
	services.InitSyncService(client, services.GetEventHub(), syncInterval())

	// Load whatever catalog a previous run left in the database so the
	// engine endpoints work before the first sync completes.
	if err := services.GetSnapshotService().Reload(); err != nil {
		log.Printf("⚠️ No catalog loaded yet: %v", err)
	}

	services.GetSyncService().Start()
	defer services.GetSyncService().Stop()

	// Initialize cleanup service
	services.InitCleanupService()
	defer func() {
		if cleanupService := services.GetCleanupService(); cleanupService != nil {
			cleanupService.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Catalog routes
	api.Get("/catalog/groups", handlers.GetGroups)
	api.Get("/catalog/categories/:id", handlers.GetCategory)
	api.Get("/catalog/achievements/:id", handlers.GetAchievement)
	api.Get("/catalog/search", handlers.SearchCatalog)

	// Account-scoped routes proxy the caller's GW2 API key upstream, so
	// they carry the stricter proxy rate limit
	proxyLimit := middleware.ProxyRateLimitMiddleware()
	api.Get("/achievements/:id/chain", proxyLimit, middleware.RequireAPIKey, handlers.GetChain)
	api.Get("/account/achievements", proxyLimit, middleware.RequireAPIKey, handlers.GetAccountAchievements)
	api.Get("/recommendations", proxyLimit, middleware.RequireAPIKey, handlers.GetRecommendations)
	api.Get("/playstyle", proxyLimit, middleware.RequireAPIKey, handlers.GetPlaystyle)

	// Sync routes
	api.Post("/sync", handlers.TriggerSync)
	api.Get("/sync/status", handlers.GetSyncStatus)

	// Preference routes
	api.Get("/preferences", handlers.GetPreferences)
	api.Post("/preferences", handlers.SavePreferences)

	// WebSocket sync feed
	app.Use("/ws", handlers.UpgradeWebSocket)
	app.Get("/ws/sync", handlers.SyncFeed)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🌐 Sync feed available at ws://localhost:%s/ws/sync", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// syncInterval reads SYNC_INTERVAL_MINUTES; 0 disables the periodic resync.
func syncInterval() time.Duration {
	raw := os.Getenv("SYNC_INTERVAL_MINUTES")
	if raw == "" {
		return 6 * time.Hour
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
