package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/services"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/utils"
)

type BackupController struct {
	service     services.BackupServiceInterface
	logger      *zap.Logger
	cleanupDays int
}

func NewBackupController(service services.BackupServiceInterface, logger *zap.Logger, cleanupDays int) *BackupController {
	return &BackupController{service: service, logger: logger, cleanupDays: cleanupDays}
}

func (c *BackupController) CreateBackup(ctx echo.Context) error {
	snapshot, filePath, err := c.service.CreateSnapshot(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Снимок создан", map[string]interface{}{
		"snapshot": snapshot,
		"file":     filePath,
	})
}

func (c *BackupController) Restore(ctx echo.Context) error {
	var snapshot entities.Snapshot
	if err := ctx.Bind(&snapshot); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrInvalidSnapshot, err), c.logger)
	}

	if err := c.service.Restore(ctx.Request().Context(), snapshot); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Хранилище восстановлено из снимка", nil)
}

func (c *BackupController) Cleanup(ctx echo.Context) error {
	payload := dto.CleanupRequestDTO{Days: c.cleanupDays}
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if payload.Days <= 0 {
		payload.Days = c.cleanupDays
	}

	result, err := c.service.Cleanup(ctx.Request().Context(), payload.Days, payload.IncludeVideos)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Очистка завершена", result)
}

// ClearDatabase — необратимая операция, требует явного confirm=true.
func (c *BackupController) ClearDatabase(ctx echo.Context) error {
	if ctx.QueryParam("confirm") != "true" {
		return utils.ErrorResponse(ctx, apperrors.WithMessage(apperrors.ErrBadRequest,
			"полная очистка требует параметра confirm=true"), c.logger)
	}

	if err := c.service.ClearAll(ctx.Request().Context()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Хранилище очищено", nil)
}
