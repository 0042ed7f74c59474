package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/events"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/normalize"
	"return-unpack-system/internal/repositories"
	"return-unpack-system/pkg/eventbus"
	"return-unpack-system/pkg/filestorage"
	"return-unpack-system/pkg/types"
)

const videoPrefix = "videos"

type OrderServiceInterface interface {
	GetOrder(ctx context.Context, orderNumber string) (*dto.OrderDTO, error)
	CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.OrderDTO, error)
	UpdateOrder(ctx context.Context, orderNumber string, payload dto.UpdateOrderDTO) (*dto.OrderDTO, bool, error)
	DeleteOrder(ctx context.Context, orderNumber string) error
	ListOrders(ctx context.Context, query dto.ListOrdersDTO, filter filtering.OrderFilter) ([]dto.OrderDTO, types.Pagination, error)
	SearchOrders(ctx context.Context, keyword string, limit int) ([]dto.OrderDTO, error)
	AttachVideo(ctx context.Context, orderNumber string, video io.Reader, size int64, duration float64) (*dto.OrderDTO, error)
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	storage   filestorage.FileStorageInterface
	bus       *eventbus.Bus
	logger    *zap.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	storage filestorage.FileStorageInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orderRepo: orderRepo,
		storage:   storage,
		bus:       bus,
		logger:    logger,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderNumber string) (*dto.OrderDTO, error) {
	order, err := s.orderRepo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	result := dto.OrderToDTO(order)
	return &result, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, payload dto.CreateOrderDTO) (*dto.OrderDTO, error) {
	raw := payload.ToRaw()
	if _, err := normalize.OrderNumber(raw); err != nil {
		return nil, err
	}

	order := normalize.Normalize(raw, nil, time.Now())
	created, err := s.orderRepo.Insert(ctx, order)
	if err != nil {
		s.logger.Error("Ошибка при создании заказа", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Заказ создан", zap.String("orderNumber", created.OrderNumber))
	s.publishSaved(ctx, created)

	result := dto.OrderToDTO(created)
	return &result, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, orderNumber string, payload dto.UpdateOrderDTO) (*dto.OrderDTO, bool, error) {
	updated, created, err := s.orderRepo.Update(ctx, strings.TrimSpace(orderNumber), payload.ToPatch())
	if err != nil {
		s.logger.Error("Ошибка при обновлении заказа", zap.String("orderNumber", orderNumber), zap.Error(err))
		return nil, false, err
	}
	if created {
		s.logger.Info("Заказ создан через upsert", zap.String("orderNumber", orderNumber))
	}
	s.publishSaved(ctx, updated)

	result := dto.OrderToDTO(updated)
	return &result, created, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderNumber string) error {
	order, err := s.orderRepo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, order.OrderNumber); err != nil {
		return err
	}

	if order.VideoFile != "" {
		if err := s.storage.Delete(order.VideoFile); err != nil {
			s.logger.Warn("Не удалось удалить видеофайл заказа",
				zap.String("orderNumber", order.OrderNumber),
				zap.String("videoFile", order.VideoFile),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Заказ удалён", zap.String("orderNumber", order.OrderNumber))
	s.bus.Publish(ctx, events.OrderDeleted{
		OrderNumber: order.OrderNumber,
		Date:        order.EffectiveDate().Format("2006-01-02"),
	})
	return nil
}

func (s *OrderService) ListOrders(ctx context.Context, query dto.ListOrdersDTO, filter filtering.OrderFilter) ([]dto.OrderDTO, types.Pagination, error) {
	orders, pagination, err := s.orderRepo.Paginate(ctx, query.Page, query.PageSize, filter, query.SortField, query.SortOrder)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	return dto.OrdersToDTO(orders), pagination, nil
}

func (s *OrderService) SearchOrders(ctx context.Context, keyword string, limit int) ([]dto.OrderDTO, error) {
	orders, err := s.orderRepo.Search(ctx, strings.TrimSpace(keyword), limit)
	if err != nil {
		return nil, err
	}
	return dto.OrdersToDTO(orders), nil
}

// AttachVideo сохраняет ролик распаковки и отмечает заказ записанным.
// Если scanTime ещё пуст, он проставится временем записи.
func (s *OrderService) AttachVideo(ctx context.Context, orderNumber string, video io.Reader, size int64, duration float64) (*dto.OrderDTO, error) {
	order, err := s.orderRepo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}

	fileName := VideoFileName(order.OrderNumber, order.ShopName)
	filePath, err := s.storage.Save(video, fileName, videoPrefix)
	if err != nil {
		s.logger.Error("Не удалось сохранить видео", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return nil, err
	}

	now := time.Now()
	patch := map[string]interface{}{
		"videoFile":       filePath,
		"videoRecorded":   true,
		"videoRecordedAt": now,
		"videoDuration":   duration,
		"videoSize":       size,
	}
	updated, _, err := s.orderRepo.Update(ctx, order.OrderNumber, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Видео прикреплено к заказу",
		zap.String("orderNumber", order.OrderNumber),
		zap.String("videoFile", filePath),
	)
	s.publishSaved(ctx, updated)

	result := dto.OrderToDTO(updated)
	return &result, nil
}

func (s *OrderService) publishSaved(ctx context.Context, order *entities.Order) {
	s.bus.Publish(ctx, events.OrderSaved{
		OrderNumber: order.OrderNumber,
		Date:        order.EffectiveDate().Format("2006-01-02"),
	})
}

var unsafeFileNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// VideoFileName строит имя видеофайла вида "<номер>_<магазин>.mp4":
// запрещённые для файловых систем символы вычищаются, пробелы становятся
// подчёркиваниями, имя магазина режется до 50 символов.
func VideoFileName(orderNumber, shopName string) string {
	clean := unsafeFileNameChars.ReplaceAllString(shopName, "")
	clean = whitespaceRun.ReplaceAllString(strings.TrimSpace(clean), "_")
	if runes := []rune(clean); len(runes) > 50 {
		clean = string(runes[:50])
	}
	if clean == "" {
		return fmt.Sprintf("%s.mp4", orderNumber)
	}
	return fmt.Sprintf("%s_%s.mp4", orderNumber, clean)
}
