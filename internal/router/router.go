package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/handlers"
	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/services"
	"github.com/slidecraft/slidecraft-backend/internal/services/auth"
	"github.com/slidecraft/slidecraft-backend/internal/services/excel"
	"github.com/slidecraft/slidecraft-backend/internal/services/llm"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

// SetupRouter wires repositories, services and handlers onto the Gin engine.
// rabbitMQService may be nil when no broker is reachable; event mirroring is
// simply skipped then.
func SetupRouter(db *gorm.DB, llmClient llm.Client, rabbitMQService *services.RabbitMQService, sseHub *services.SSEHub) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create a new router
	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Repositories
	presentationRepo := repository.NewPresentationRepository(db)
	slideRepo := repository.NewSlideRepository(db)
	taskRepo := repository.NewGenerationTaskRepository(db)
	webhookRepo := repository.NewWebhookSubscriptionRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	assetRepo := repository.NewAssetRepository(db)

	// Services
	exportsDir := utils.GetEnv("EXPORT_DIR", "exports")
	authService := auth.NewAuthService(auth.NewMemorySessionStore())
	layoutService := services.NewLayoutService(templateRepo)
	structureService := services.NewStructureService(llmClient)
	imageService := services.NewImageService()
	exportService := services.NewExportService()
	webhookService := services.NewWebhookService(webhookRepo)
	assetService := services.NewAssetService(assetRepo, imageService)
	presentationService := services.NewPresentationService(presentationRepo, slideRepo, structureService, exportService)
	generationService := services.NewGenerationService(
		presentationRepo, slideRepo, taskRepo,
		layoutService, structureService, llmClient,
		imageService, exportService, webhookService,
		rabbitMQService, sseHub,
	)
	reportService := excel.NewReportService(presentationRepo, slideRepo, exportsDir)

	// Middleware with services
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	presentationHandler := handlers.NewPresentationHandler(presentationService, generationService, layoutService)
	taskHandler := handlers.NewTaskHandler(generationService, sseHub)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	templateHandler := handlers.NewTemplateHandler(layoutService)
	assetHandler := handlers.NewAssetHandler(assetService)
	reportHandler := handlers.NewReportHandler(reportService, exportsDir)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/session", authHandler.CreateSession)
			authRoutes.DELETE("/session", authHandler.DeleteSession)
		}

		// Identity is optional on most routes; anonymous decks have no owner
		open := api.Group("")
		open.Use(authMiddleware.OptionalAuth())
		{
			presentations := open.Group("/presentation")
			{
				presentations.POST("/create", presentationHandler.CreatePresentation)
				presentations.POST("/prepare", presentationHandler.PreparePresentation)
				presentations.GET("/stream/:id", presentationHandler.StreamPresentation)
				presentations.POST("/generate", presentationHandler.GeneratePresentation)
				presentations.POST("/generate/async", presentationHandler.GeneratePresentationAsync)
				presentations.GET("/status/:id", taskHandler.GetTaskStatus)
				presentations.GET("/status/:id/stream", taskHandler.StreamTaskProgress)
				presentations.POST("/edit", presentationHandler.EditPresentation)
				presentations.POST("/derive", presentationHandler.DerivePresentation)
				presentations.POST("/export", presentationHandler.ExportPresentation)
				presentations.PATCH("/update", presentationHandler.UpdatePresentation)
				presentations.GET("/:id", presentationHandler.GetPresentation)
				presentations.DELETE("/:id", presentationHandler.DeletePresentation)
			}

			webhooks := open.Group("/webhook")
			{
				webhooks.POST("/subscribe", webhookHandler.Subscribe)
				webhooks.DELETE("/unsubscribe", webhookHandler.Unsubscribe)
			}

			open.GET("/images/generate", assetHandler.GenerateImage)

			templates := open.Group("/templates")
			{
				templates.GET("", presentationHandler.ListTemplates)
				templates.GET("/custom", templateHandler.ListCustomTemplates)
				templates.GET("/:name", presentationHandler.GetLayout)
				templates.POST("", templateHandler.SaveTemplate)
				templates.DELETE("/:id", templateHandler.DeleteTemplate)
			}

			// Owner-scoped routes
			owned := open.Group("")
			owned.Use(authMiddleware.RequireAuth())
			{
				owned.GET("/presentation/all", presentationHandler.ListPresentations)
				owned.GET("/images/generated", assetHandler.ListGeneratedImages)
				owned.DELETE("/images/:id", assetHandler.DeleteImage)
				owned.POST("/reports/presentations", reportHandler.BuildPresentationsReport)
				owned.GET("/reports/download/:filename", reportHandler.DownloadReport)
			}
		}
	}

	return r
}
