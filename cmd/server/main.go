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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"servicen_platform/internal/config"
	"servicen_platform/internal/handler"
	"servicen_platform/internal/middleware"
	"servicen_platform/internal/repository"
	"servicen_platform/internal/service"
	"servicen_platform/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis (rate limiting)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Репозитории, сервисы, middleware, handlers
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, cfg, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	handlers := handler.NewHandlers(services, cfg, appLogger)

	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		auth := v1.Group("/auth")
		{
			authLimit := rateLimitMiddleware.Limit("auth", 20, time.Minute)
			auth.POST("/register", authLimit, handlers.Auth.Register)
			auth.POST("/login", authLimit, handlers.Auth.Login)
			auth.POST("/refresh", handlers.Auth.RefreshToken)
			auth.POST("/logout", handlers.Auth.Logout)
		}

		// Публичный каталог услуг
		v1.GET("/services", handlers.Listing.List)

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Пользователи
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.User.GetMe)
				users.GET("", handlers.User.List)
			}

			// Мессенджер
			sendLimit := rateLimitMiddleware.Limit("messages", cfg.Messaging.SendRateLimit, cfg.Messaging.SendRateWindow)
			protected.POST("/messages", sendLimit, handlers.Messaging.SendMessage)

			conversations := protected.Group("/conversations")
			{
				conversations.GET("", handlers.Messaging.ListConversations)
				conversations.GET("/:counterpartId", handlers.Messaging.GetConversation)
				conversations.POST("/:counterpartId/read", handlers.Messaging.MarkConversationRead)
				conversations.DELETE("/:counterpartId", handlers.Messaging.DeleteConversation)
			}

			// Объявления услуг: /services/mine раньше /services/:id,
			// иначе gin сматчит "mine" как :id
			services := protected.Group("/services")
			{
				prestataireOnly := middleware.RequireRole("prestataire")
				services.GET("/mine", prestataireOnly, handlers.Listing.ListMine)
				services.POST("", prestataireOnly, handlers.Listing.Create)
				services.PUT("/:id", prestataireOnly, handlers.Listing.Update)
				services.DELETE("/:id", prestataireOnly, handlers.Listing.Delete)
			}

			// Личный кабинет
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("", handlers.Dashboard.Home)
				dashboard.GET("/stats", handlers.Dashboard.Stats)
			}
		}

		// Карточка услуги публична, но объявляется после /services/mine
		v1.GET("/services/:id", handlers.Listing.GetByID)
	}

	// WebSocket для событий мессенджера
	router.GET("/ws", handlers.WebSocket.HandleEvents)

	return router
}
