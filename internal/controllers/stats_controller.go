package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/services"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/utils"
)

type StatsController struct {
	service services.StatsServiceInterface
	logger  *zap.Logger
}

func NewStatsController(service services.StatsServiceInterface, logger *zap.Logger) *StatsController {
	return &StatsController{service: service, logger: logger}
}

func (c *StatsController) Daily(ctx echo.Context) error {
	stats, err := c.service.GetDaily(ctx.Request().Context(), ctx.QueryParam("date"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Дневная сводка", stats)
}

func (c *StatsController) FilterStats(ctx echo.Context) error {
	var filter filtering.OrderFilter
	if err := ctx.Bind(&filter); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}

	stats, err := c.service.GetFilterStats(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Сводка по выборке", stats)
}
