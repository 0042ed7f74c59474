package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	uploadcfg "return-unpack-system/config"
	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/services"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/utils"
)

type ExchangeController struct {
	service     services.ExchangeServiceInterface
	logger      *zap.Logger
	maxFileSize int64
}

func NewExchangeController(service services.ExchangeServiceInterface, logger *zap.Logger, maxFileSize int64) *ExchangeController {
	return &ExchangeController{service: service, logger: logger, maxFileSize: maxFileSize}
}

// Import принимает файл импорта multipart-полем "file".
func (c *ExchangeController) Import(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	rules := uploadcfg.UploadContexts["import_file"]
	if !rules.Accepts(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		return utils.ErrorResponse(ctx, apperrors.WithMessage(apperrors.ErrUnsupportedFormat,
			"неподдерживаемый формат файла импорта: %s", fileHeader.Filename), c.logger)
	}
	if maxSize := rules.MaxSizeBytes(c.maxFileSize); maxSize > 0 && fileHeader.Size > maxSize {
		return utils.ErrorResponse(ctx, apperrors.WithMessage(apperrors.ErrImportTooLarge,
			"файл импорта превышает допустимый размер %d байт", maxSize), c.logger)
	}

	var options dto.ImportOptionsDTO
	if err := ctx.Bind(&options); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	if err := ctx.Validate(&options); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer file.Close()

	result, err := c.service.Import(ctx.Request().Context(), file, fileHeader.Filename, options)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "Импорт завершён", result)
}

func (c *ExchangeController) History(ctx echo.Context) error {
	limit := utils.QueryInt(ctx, "limit", 20)
	entries, err := c.service.History(ctx.Request().Context(), limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, http.StatusOK, "История импорта", entries)
}

// Export стримит выгрузку файлом вложением.
func (c *ExchangeController) Export(ctx echo.Context) error {
	var filter filtering.OrderFilter
	if err := ctx.Bind(&filter); err != nil {
		return utils.ErrorResponse(ctx, apperrors.Wrap(apperrors.ErrBadRequest, err), c.logger)
	}
	format := utils.QueryString(ctx, "format", "csv")

	fileName, content, mimeType, err := c.service.Export(ctx.Request().Context(), filter, format)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return ctx.Blob(http.StatusOK, mimeType, content)
}
