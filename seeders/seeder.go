package seeders

import (
	"context"
	"log"

	"go.uber.org/zap"

	"return-unpack-system/internal/repositories"
	"return-unpack-system/internal/services"
	apperrors "return-unpack-system/pkg/errors"
)

// SeedDemoOrders наполняет пустую базу демонстрационными возвратами.
// Уже существующие номера заказов пропускаются, сидер можно гонять
// повторно.
func SeedDemoOrders(ctx context.Context, store *repositories.Store, logger *zap.Logger) error {
	log.Println("▶️  Запуск наполнения демонстрационными возвратами...")

	repo := repositories.NewOrderRepository(store, logger)

	created, skipped := 0, 0
	for _, order := range demoOrders() {
		if _, err := repo.Insert(ctx, order); err != nil {
			if apperrors.IsCode(err, apperrors.ErrDuplicateOrderNumber.Code) {
				skipped++
				continue
			}
			return err
		}
		created++
	}

	log.Printf("✅ Наполнение завершено: создано %d, пропущено %d", created, skipped)
	return nil
}

// SeedDemoStats пересчитывает дневные сводки по засеянным заказам.
func SeedDemoStats(ctx context.Context, store *repositories.Store, logger *zap.Logger) error {
	log.Println("▶️  Пересчёт дневных сводок по демонстрационным данным...")

	statsService := services.NewStatsService(
		repositories.NewOrderRepository(store, logger),
		repositories.NewStatsRepository(store),
		logger,
	)

	dates := map[string]struct{}{}
	for _, order := range demoOrders() {
		dates[order.EffectiveDate().Format("2006-01-02")] = struct{}{}
	}

	for date := range dates {
		if _, err := statsService.RefreshDaily(ctx, date); err != nil {
			return err
		}
	}

	log.Printf("✅ Пересчитаны сводки за %d дней", len(dates))
	return nil
}
