package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/docs"
	"github.com/slidecraft/slidecraft-backend/internal/database"
	"github.com/slidecraft/slidecraft-backend/internal/router"
	"github.com/slidecraft/slidecraft-backend/internal/services"
	"github.com/slidecraft/slidecraft-backend/internal/services/llm"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

// @title SlideCraft Backend API
// @version 1.0
// @description Presentation generation orchestrator with outline generation, layout structuring, batched slide generation, asset fetching, export and webhooks

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your access token

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Set Swagger base path dynamically
	basePath := getEnv("BASE_PATH", "/")
	docs.SwaggerInfo.BasePath = basePath

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// LLM backend for outlines, structure and slide content
	llmClient := llm.NewHTTPClient(getEnv("LLM_SERVICE_URL", "http://localhost:9000"))

	// Create SSE Hub (shared between the generation pipeline and handlers)
	sseHub := services.NewSSEHub()

	// Initialize RabbitMQ event mirroring; the broker is optional
	rabbitMQService, err := services.NewRabbitMQService()
	if err != nil {
		logrus.Warnf("Failed to initialize RabbitMQ, event mirroring disabled: %v", err)
		rabbitMQService = nil
	} else {
		defer rabbitMQService.Close()
	}

	// Initialize router
	r := router.SetupRouter(db, llmClient, rabbitMQService, sseHub)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	shutdownTimeout := time.Duration(utils.GetEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
