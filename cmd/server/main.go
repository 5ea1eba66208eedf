package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlhuang/tastemap-backend/config"
	"github.com/mlhuang/tastemap-backend/internal/app/controller"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/app/service"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/mlhuang/tastemap-backend/internal/middleware"
	"github.com/mlhuang/tastemap-backend/internal/router"
	"github.com/mlhuang/tastemap-backend/internal/scheduler"
	"github.com/mlhuang/tastemap-backend/internal/storage"
	"github.com/mlhuang/tastemap-backend/pkg/logger"
	"github.com/mlhuang/tastemap-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console",
		EnableColor: true,
	})

	logger.Info("Starting TasteMap Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs token revocation and the top-restaurants cache; both
	// degrade cleanly when it is unavailable.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	uploadStorage, err := storage.NewLocalStorage(&cfg.Upload)
	if err != nil {
		logger.Fatal("Failed to prepare upload storage", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	commentRepo := repository.NewCommentRepository(db.GetDB())
	favoriteRepo := repository.NewFavoriteRepository(db.GetDB())
	likeRepo := repository.NewLikeRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	restaurantService := service.NewRestaurantService(
		restaurantRepo,
		categoryRepo,
		commentRepo,
		favoriteRepo,
		likeRepo,
		redis.GetClient(),
	)
	favoriteService := service.NewFavoriteService(favoriteRepo, likeRepo, restaurantRepo)
	commentService := service.NewCommentService(commentRepo, restaurantRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	userService := service.NewUserService(userRepo, commentRepo)

	// Controllers
	authController := controller.NewAuthController(authService, cfg.JWT.TokenExpiry)
	restaurantController := controller.NewRestaurantController(restaurantService)
	favoriteController := controller.NewFavoriteController(favoriteService)
	commentController := controller.NewCommentController(commentService)
	userController := controller.NewUserController(userService, uploadStorage)
	adminController := controller.NewAdminController(restaurantService, userService, uploadStorage)
	categoryController := controller.NewCategoryController(categoryService)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	topScheduler := scheduler.NewTopRestaurantsScheduler(restaurantService)
	if err := topScheduler.Start(); err != nil {
		logger.Warn("Failed to start top restaurants scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer topScheduler.Stop()

	r := router.NewRouter(
		authController,
		restaurantController,
		favoriteController,
		commentController,
		userController,
		adminController,
		categoryController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
