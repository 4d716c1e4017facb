package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/db"
	"devconnect/internal/github"
	apihttp "devconnect/internal/http"
	"devconnect/internal/repository"
	"devconnect/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	applied, err := db.ApplyMigrations(cfg.MigrationsDir, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	if applied {
		logger.Info("migrations applied")
	}

	var rateLimiter service.LoginRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			rateLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 10)
		}
		cancel()
	}

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	tokenSvc := service.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute)
	userSvc := service.NewUserService(logger, userRepo, rateLimiter)
	profileSvc := service.NewProfileService(logger, profileRepo)
	githubCli := github.NewHTTPClient(cfg.GithubBaseURL, cfg.GithubClientID, cfg.GithubSecret, logger)

	userHandler := apihttp.NewUserHandler(logger, userSvc, tokenSvc)
	profileHandler := apihttp.NewProfileHandler(logger, profileSvc, githubCli)
	router := apihttp.NewRouter(logger, tokenSvc, userHandler, profileHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("env", cfg.AppEnv),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
