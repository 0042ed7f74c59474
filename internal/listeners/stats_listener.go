package listeners

import (
	"context"
	"time"

	"go.uber.org/zap"

	"return-unpack-system/internal/events"
	"return-unpack-system/internal/services"
	"return-unpack-system/pkg/eventbus"
)

// StatsListener пересчитывает дневные сводки в ответ на мутации заказов,
// снимая эту заботу с пишущих путей.
type StatsListener struct {
	stats  services.StatsServiceInterface
	logger *zap.Logger
}

func NewStatsListener(stats services.StatsServiceInterface, logger *zap.Logger) *StatsListener {
	return &StatsListener{stats: stats, logger: logger}
}

func (l *StatsListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderSavedName, l.handleOrderChanged)
	bus.Subscribe(events.OrderDeletedName, l.handleOrderChanged)
	bus.Subscribe(events.ImportCompletedName, l.handleImportCompleted)
	bus.Subscribe(events.StoreClearedName, l.handleStoreCleared)
}

func (l *StatsListener) handleOrderChanged(ctx context.Context, event eventbus.Event) error {
	var date string
	switch e := event.(type) {
	case events.OrderSaved:
		date = e.Date
	case events.OrderDeleted:
		date = e.Date
	default:
		return nil
	}
	_, err := l.stats.RefreshDaily(ctx, date)
	return err
}

func (l *StatsListener) handleImportCompleted(ctx context.Context, event eventbus.Event) error {
	completed, ok := event.(events.ImportCompleted)
	if !ok {
		return nil
	}
	for _, date := range completed.Dates {
		if _, err := l.stats.RefreshDaily(ctx, date); err != nil {
			l.logger.Error("Не удалось пересчитать сводку после импорта",
				zap.String("date", date), zap.Error(err))
		}
	}
	return nil
}

func (l *StatsListener) handleStoreCleared(ctx context.Context, _ eventbus.Event) error {
	// После полной очистки актуален только сегодняшний день.
	_, err := l.stats.RefreshDaily(ctx, time.Now().Format("2006-01-02"))
	return err
}
