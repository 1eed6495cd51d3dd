package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-stack/testing-service/internal/auth"
	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/campus-stack/testing-service/internal/cache"
	"github.com/campus-stack/testing-service/internal/config"
	"github.com/campus-stack/testing-service/internal/handlers"
	"github.com/campus-stack/testing-service/internal/models"
	"github.com/campus-stack/testing-service/internal/repositories/postgres"
	"github.com/campus-stack/testing-service/internal/services"
	"github.com/campus-stack/testing-service/internal/utils"
	"github.com/campus-stack/testing-service/internal/validator"
	"github.com/campus-stack/testing-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	logger.Info("Starting testing service",
		"port", cfg.Port,
		"environment", cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Course{},
		&models.CourseEnrollment{},
		&models.Question{},
		&models.QuestionVersion{},
		&models.Test{},
		&models.TestQuestion{},
		&models.Attempt{},
		&models.AttemptQuestion{},
		&models.Answer{},
		&models.Notification{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	engine := authz.NewEngine()
	v := validator.New()
	versionCache := cache.NewVersionCache(cache.NewRedisCache(redisClient, slogger))
	serviceManager := services.NewServiceManager(repo, engine, v, versionCache, publisher, slogger)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, repo.User())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, authenticator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("Server listening", "addr", server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
