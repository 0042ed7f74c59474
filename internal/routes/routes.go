package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"return-unpack-system/internal/controllers"
	"return-unpack-system/internal/listeners"
	"return-unpack-system/internal/repositories"
	"return-unpack-system/internal/services"
	"return-unpack-system/pkg/config"
	"return-unpack-system/pkg/eventbus"
	"return-unpack-system/pkg/filestorage"
	"return-unpack-system/pkg/utils"
)

// Deps — внешние зависимости маршрутов, собранные в main.
type Deps struct {
	Store  *repositories.Store
	Cache  repositories.CacheRepositoryInterface
	Config *config.Config
	Logger *zap.Logger
}

func InitRouter(e *echo.Echo, deps Deps) error {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")

	fileStorage, err := filestorage.NewLocalFileStorage(deps.Config.UploadDir)
	if err != nil {
		return err
	}
	bus := eventbus.New(logger)

	// --- 1. РЕПОЗИТОРИИ ---
	orderRepo := repositories.NewOrderRepository(deps.Store, logger)
	statsRepo := repositories.NewStatsRepository(deps.Store)
	settingsRepo := repositories.NewSettingsRepository(deps.Store)
	historyRepo := repositories.NewImportHistoryRepository(deps.Store)

	// --- 2. СЕРВИСЫ ---
	orderService := services.NewOrderService(orderRepo, fileStorage, bus, logger)
	statsService := services.NewStatsService(orderRepo, statsRepo, logger)
	exchangeService := services.NewExchangeService(
		orderRepo, historyRepo, settingsRepo, deps.Cache, bus, logger,
		deps.Config.ImportBatchSize, deps.Config.ImportBatchPause, deps.Config.ImportMaxRecords,
	)
	backupService := services.NewBackupService(
		orderRepo, statsRepo, settingsRepo, historyRepo, fileStorage, bus, logger,
	)

	// --- 3. СЛУШАТЕЛИ ---
	listeners.NewStatsListener(statsService, logger).Register(bus)

	// --- 4. КОНТРОЛЛЕРЫ И МАРШРУТЫ ---
	orderCtrl := controllers.NewOrderController(orderService, logger, deps.Config.ImportMaxFileSize)
	exchangeCtrl := controllers.NewExchangeController(exchangeService, logger, deps.Config.ImportMaxFileSize)
	statsCtrl := controllers.NewStatsController(statsService, logger)
	backupCtrl := controllers.NewBackupController(backupService, logger, deps.Config.CleanupDefaultDays)

	runOrderRouter(api, orderCtrl)
	runExchangeRouter(api, exchangeCtrl)
	runStatsRouter(api, statsCtrl)
	runBackupRouter(api, backupCtrl)

	api.GET("/health", func(ctx echo.Context) error {
		if _, err := deps.Store.Pool(); err != nil {
			return utils.ErrorResponse(ctx, err, logger)
		}
		return utils.SuccessResponse(ctx, http.StatusOK, "ok", echo.Map{
			"schemaVersion": services.SnapshotSchemaVersion,
		})
	})

	logger.Info("InitRouter: Маршруты созданы")
	return nil
}
