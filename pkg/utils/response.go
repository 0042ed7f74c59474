package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/types"
)

func SuccessResponse(ctx echo.Context, status int, message string, body interface{}) error {
	return ctx.JSON(status, types.APIResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse переводит ошибку в конверт APIResponse. AppError уходит
// клиенту со своим кодом и статусом, всё остальное прячется за 500.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("внутренняя ошибка", zap.String("code", appErr.Code), zap.Error(err))
		} else {
			logger.Debug("ошибка запроса", zap.String("code", appErr.Code), zap.Error(err))
		}
		return ctx.JSON(appErr.Status, types.APIResponse{
			Status:  false,
			Message: appErr.Message,
			Code:    appErr.Code,
		})
	}

	logger.Error("необработанная ошибка", zap.Error(err))
	return ctx.JSON(http.StatusInternalServerError, types.APIResponse{
		Status:  false,
		Message: apperrors.ErrInternal.Message,
		Code:    apperrors.ErrInternal.Code,
	})
}
