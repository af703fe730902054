// @title Vidgrab API
// @version 1.0.0
// @description REST API for resolving social-media/video URLs to playable-stream metadata and tracking download sessions with realtime progress.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/vidgrab/vidgrab/docs"
	"github.com/vidgrab/vidgrab/internal/api/handlers"
	"github.com/vidgrab/vidgrab/internal/api/middleware"
	"github.com/vidgrab/vidgrab/internal/config"
	"github.com/vidgrab/vidgrab/internal/database"
	"github.com/vidgrab/vidgrab/internal/models"
	"github.com/vidgrab/vidgrab/internal/services"
	"github.com/vidgrab/vidgrab/internal/ws"
)

func main() {
	cfg := config.Load()

	log.Printf("API server starting on port %s", cfg.Port)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	store := models.NewSessionStore()
	hub := ws.NewHub()
	sessions := services.NewSessionManager(store, hub)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	sessions.StartJanitor(janitorCtx, 10*time.Minute, cfg.SessionRetention)

	router := setupRouter(cfg, db, sessions, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server startup failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	stopJanitor()
	hub.Shutdown()
	sessions.Shutdown()
}

func setupRouter(cfg *config.Config, db *sql.DB, sessions *services.SessionManager, hub *ws.Hub) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	downloadService := services.NewDownloadService()

	downloadHandler := handlers.NewDownloadHandler(downloadService, sessions, cfg.FetchTimeout)
	platformHandler := handlers.NewPlatformHandler()
	healthHandler := handlers.NewHealthHandler(cfg.Environment)
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	adminHandler := handlers.NewAdminHandler(sessions)

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS("*"))

	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	downloadLimiter := middleware.DownloadLimiter()
	validateLimiter := middleware.ValidateLimiter()
	statusLimiter := middleware.StatusLimiter()

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Status)
		api.GET("/ws", ws.Serve(hub))

		api.POST("/validate", validateLimiter, downloadHandler.Validate)
		api.POST("/metadata", validateLimiter, downloadHandler.Metadata)
		api.POST("/download", downloadLimiter, downloadHandler.Initiate)
		api.GET("/status/:downloadId", statusLimiter, downloadHandler.Status)
		api.DELETE("/cancel/:downloadId", downloadLimiter, downloadHandler.Cancel)
		api.GET("/formats/:platform", statusLimiter, downloadHandler.Formats)

		platforms := api.Group("/platforms")
		{
			platforms.GET("", platformHandler.List)
			platforms.GET("/supported", platformHandler.ListSupported)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify", middleware.JWTAuth(cfg.JWTSecret), authHandler.Verify)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			admin.GET("/downloads", adminHandler.ListDownloads)
			admin.POST("/cleanup", adminHandler.Cleanup)
		}
	}

	return router
}
