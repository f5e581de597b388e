package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/planpoker/poker-jira-backend/internal/api/handlers"
	"github.com/planpoker/poker-jira-backend/internal/api/middleware"
	"github.com/planpoker/poker-jira-backend/internal/config"
	"github.com/planpoker/poker-jira-backend/internal/crypto"
	"github.com/planpoker/poker-jira-backend/internal/jira"
	"github.com/planpoker/poker-jira-backend/internal/repository"
	"github.com/planpoker/poker-jira-backend/internal/service"
)

func main() {

	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed load config:", err)
	}

	// INIT DB
	var repo *repository.PostgresRepo
	if cfg.DatabaseURL != "" {
		repo, err = repository.NewPostgresRepoFromDSN(cfg.DatabaseURL)
	} else {
		repo, err = repository.NewPostgresRepoFromConfig(&repository.DBConfig{
			Host: cfg.DBHost,
			Port: cfg.DBPort,
			User: cfg.DBUser,
			Pass: cfg.DBPass,
			Name: cfg.DBName,
		})
	}
	if err != nil {
		log.Fatal("failed connecting database:", err)
	}

	// MIGRATIONS
	if err := repo.RunMigrations(context.Background()); err != nil {
		log.Fatal("migration error:", err)
	}

	// ADMIN SEED
	hashed, _ := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err := repo.UpsertAdmin(context.Background(), cfg.AdminUsername, string(hashed)); err != nil {
		log.Println("failed seeding admin:", err)
	} else {
		log.Println("admin seeded OK")
	}

	// SERVICES
	enc, err := crypto.NewEncryptor(cfg.FieldEncryptionKey)
	if err != nil {
		log.Fatal("failed building encryptor:", err)
	}
	client := jira.NewRESTClient(&jira.ClientConfig{
		Timeout:   time.Duration(cfg.JiraTimeoutSeconds) * time.Second,
		PageSize:  cfg.JiraSearchPageSize,
		RateLimit: cfg.JiraRateLimit,
		RateBurst: cfg.JiraRateBurst,
	})
	resolver := service.NewResolver(client, enc)
	exporter := service.NewExporter(repo, client, resolver)
	importer := service.NewImporter(repo, client, resolver)
	authService := service.NewAuthService(repo, cfg.JWTSecret)

	// HANDLERS
	authHandler := handlers.NewAuthHandler(authService)
	connectionHandler := handlers.NewConnectionHandler(repo, enc, resolver, importer)
	sessionHandler := handlers.NewSessionHandler(repo)
	storyHandler := handlers.NewStoryHandler(repo, exporter)

	// ROUTER
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api := r.Group("/api/v1")

	// AUTH ROUTES
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// PROTECTED ROUTES
	protected := api.Group("", middleware.Auth(cfg.JWTSecret))

	conns := protected.Group("/connections")
	{
		conns.GET("", connectionHandler.List)
		conns.POST("", connectionHandler.Create)
		conns.GET("/:id", connectionHandler.Get)
		conns.PUT("/:id", connectionHandler.Update)
		conns.DELETE("/:id", connectionHandler.Delete)
		conns.POST("/:id/import_stories", connectionHandler.ImportStories)
	}

	sessions := protected.Group("/sessions")
	{
		sessions.GET("", sessionHandler.List)
		sessions.POST("", sessionHandler.Create)
		sessions.GET("/:id", sessionHandler.Get)
	}

	stories := protected.Group("/stories")
	{
		stories.GET("", storyHandler.List)
		stories.POST("", storyHandler.Create)
		stories.POST("/export", storyHandler.Export)
		stories.GET("/:id", storyHandler.Get)
		stories.PUT("/:id", storyHandler.Update)
		stories.DELETE("/:id", storyHandler.Delete)
	}

	// START SERVER
	log.Println("Server running on port:", cfg.Port)
	r.Run(":" + cfg.Port)
}
