package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	uploadcfg "return-unpack-system/config"
	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/services"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/types"
	"return-unpack-system/pkg/utils"
)

type OrderController struct {
	service      services.OrderServiceInterface
	logger       *zap.Logger
	maxVideoSize int64
}

func NewOrderController(service services.OrderServiceInterface, logger *zap.Logger, maxVideoSize int64) *OrderController {
	return &OrderController{service: service, logger: logger, maxVideoSize: maxVideoSize}
}

func (c *OrderController) ListOrders(ctx echo.Context) error {
	var query dto.ListOrdersDTO
	if err := ctx.Bind(&query); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = 20
	}

	var filter filtering.OrderFilter
	if err := ctx.Bind(&filter); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}

	orders, pagination, err := c.service.ListOrders(ctx.Request().Context(), query, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Список заказов получен", types.ListBody{
		List:       orders,
		Pagination: pagination,
	})
}

func (c *OrderController) GetOrder(ctx echo.Context) error {
	order, err := c.service.GetOrder(ctx.Request().Context(), ctx.Param("orderNumber"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Заказ найден", order)
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	var payload dto.CreateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.service.CreateOrder(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusCreated, "Заказ создан", order)
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	var payload dto.UpdateOrderDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}

	order, created, err := c.service.UpdateOrder(ctx.Request().Context(), ctx.Param("orderNumber"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if created {
		return utils.SuccessResponse(ctx, http.StatusCreated, "Заказ создан", order)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Заказ обновлён", order)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	if err := c.service.DeleteOrder(ctx.Request().Context(), ctx.Param("orderNumber")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Заказ удалён", nil)
}

func (c *OrderController) SearchOrders(ctx echo.Context) error {
	keyword := ctx.QueryParam("q")
	limit := utils.QueryInt(ctx, "limit", 50)

	orders, err := c.service.SearchOrders(ctx.Request().Context(), keyword, limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Результаты поиска", orders)
}

// UploadVideo принимает ролик распаковки multipart-файлом "video".
func (c *OrderController) UploadVideo(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("video")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}

	rules := uploadcfg.UploadContexts["order_video"]
	if !rules.Accepts(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		return utils.ErrorResponse(ctx, apperrors.WithMessage(apperrors.ErrUnsupportedFormat,
			"файл %s не похож на видеоролик", fileHeader.Filename), c.logger)
	}
	if maxSize := rules.MaxSizeBytes(c.maxVideoSize); maxSize > 0 && fileHeader.Size > maxSize {
		return utils.ErrorResponse(ctx, apperrors.WithMessage(apperrors.ErrImportTooLarge,
			"видеофайл превышает допустимый размер %d байт", maxSize), c.logger)
	}

	var meta dto.VideoMetaDTO
	if err := ctx.Bind(&meta); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer file.Close()

	order, err := c.service.AttachVideo(ctx.Request().Context(), ctx.Param("orderNumber"), file, fileHeader.Size, meta.Duration)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Видео прикреплено", order)
}
