package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/repositories"
)

type StatsServiceInterface interface {
	GetDaily(ctx context.Context, date string) (*entities.DailyStats, error)
	RefreshDaily(ctx context.Context, date string) (*entities.DailyStats, error)
	GetFilterStats(ctx context.Context, filter filtering.OrderFilter) (*entities.FilterStats, error)
}

// StatsService считает сводки полным проходом по хранилищу. Никакого
// инкрементального состояния: нет кеша — нет бага его инвалидации.
type StatsService struct {
	orderRepo repositories.OrderRepositoryInterface
	statsRepo repositories.StatsRepositoryInterface
	logger    *zap.Logger
}

func NewStatsService(
	orderRepo repositories.OrderRepositoryInterface,
	statsRepo repositories.StatsRepositoryInterface,
	logger *zap.Logger,
) StatsServiceInterface {
	return &StatsService{orderRepo: orderRepo, statsRepo: statsRepo, logger: logger}
}

// GetDaily возвращает сводку дня, пересчитывая её на месте.
func (s *StatsService) GetDaily(ctx context.Context, date string) (*entities.DailyStats, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return s.RefreshDaily(ctx, date)
}

// RefreshDaily пересчитывает и сохраняет сводку за один день.
func (s *StatsService) RefreshDaily(ctx context.Context, date string) (*entities.DailyStats, error) {
	stats := entities.DailyStats{Date: date, UpdatedAt: time.Now()}

	err := s.orderRepo.ScanAll(ctx, func(order *entities.Order) error {
		if order.EffectiveDate().Format("2006-01-02") != date {
			return nil
		}
		stats.TotalOrders++
		switch order.Status {
		case entities.StatusProcessed:
			stats.ProcessedOrders++
		case entities.StatusPending:
			stats.PendingOrders++
		}
		if order.Damage == entities.DamageDamaged || order.Damage == entities.DamageMissingParts {
			stats.DamagedOrders++
		}
		if order.HasVideo() {
			stats.VideoOrders++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.statsRepo.Upsert(ctx, stats); err != nil {
		s.logger.Error("Не удалось сохранить дневную сводку", zap.String("date", date), zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

// GetFilterStats — сводка по произвольной выборке, тем же предикатом, что
// и постраничный список.
func (s *StatsService) GetFilterStats(ctx context.Context, filter filtering.OrderFilter) (*entities.FilterStats, error) {
	stats := entities.FilterStats{}

	err := s.orderRepo.ScanAll(ctx, func(order *entities.Order) error {
		if !filter.Match(order) {
			return nil
		}
		stats.Total++
		switch order.Status {
		case entities.StatusPending:
			stats.Pending++
		case entities.StatusProcessed:
			stats.Processed++
		}
		if order.Damage == entities.DamageDamaged || order.Damage == entities.DamageMissingParts {
			stats.Damaged++
		}
		if order.HasVideo() {
			stats.WithVideo++
		} else {
			stats.WithoutVideo++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
