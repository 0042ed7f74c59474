// Файл: main.go

package main

import (
	"context"
	"log"
	"net/http"
	"path/filepath"

	"return-unpack-system/internal/repositories"
	"return-unpack-system/internal/routes"
	"return-unpack-system/pkg/config"
	apperrors "return-unpack-system/pkg/errors"
	applogger "return-unpack-system/pkg/logger"
	"return-unpack-system/pkg/utils"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	e := echo.New()
	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				utils.ErrorResponse(c, apperrors.ErrInternal, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	absPath, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	e.Static("/uploads", absPath)

	e.Validator = utils.NewEchoValidator()

	ctx := context.Background()

	store := repositories.NewStore(cfg.DatabaseURL, logger)
	if err := store.Open(ctx); err != nil {
		logger.Fatal("не удалось открыть хранилище заказов", zap.Error(err))
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.RedisAddress))
	}
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	if err := routes.InitRouter(e, routes.Deps{
		Store:  store,
		Cache:  cacheRepo,
		Config: cfg,
		Logger: logger,
	}); err != nil {
		logger.Fatal("Ошибка инициализации роутов", zap.Error(err))
	}

	logger.Info("🚀 Сервер запущен", zap.String("port", cfg.ServerPort))
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Ошибка запуска сервера", zap.Error(err))
	}
}
