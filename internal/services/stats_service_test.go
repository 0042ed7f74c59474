package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/filtering"
)

func seedOrder(t *testing.T, repo *memoryOrderRepository, order entities.Order) {
	t.Helper()
	_, err := repo.Insert(context.Background(), order)
	require.NoError(t, err)
}

func TestRefreshDaily(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	statsRepo := newMemoryStatsRepository()
	svc := NewStatsService(orderRepo, statsRepo, zap.NewNop())

	day := time.Date(2026, 8, 20, 10, 0, 0, 0, time.Local)
	otherDay := day.AddDate(0, 0, -3)

	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-1", ImportTime: day, Status: entities.StatusPending, Damage: entities.DamageIntact})
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-2", ImportTime: day, Status: entities.StatusProcessed, Damage: entities.DamageDamaged, VideoFile: "videos/SO-2.mp4"})
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-3", ImportTime: day, Status: entities.StatusProcessed, Damage: entities.DamageMissingParts})
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-4", ImportTime: otherDay, Status: entities.StatusPending, Damage: entities.DamageIntact})

	stats, err := svc.RefreshDaily(context.Background(), day.Format("2006-01-02"))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders, "заказ за другой день не попадает в сводку")
	assert.Equal(t, 2, stats.ProcessedOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 2, stats.DamagedOrders, "missing_parts тоже считается повреждением")
	assert.Equal(t, 1, stats.VideoOrders)

	saved, err := statsRepo.Get(context.Background(), day.Format("2006-01-02"))
	require.NoError(t, err)
	require.NotNil(t, saved, "пересчитанная сводка сохраняется")
	assert.Equal(t, stats.TotalOrders, saved.TotalOrders)
}

func TestRefreshDaily_ScanTimeWinsOverImportTime(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	statsRepo := newMemoryStatsRepository()
	svc := NewStatsService(orderRepo, statsRepo, zap.NewNop())

	importDay := time.Date(2026, 8, 20, 10, 0, 0, 0, time.Local)
	scanDay := importDay.AddDate(0, 0, 2)

	seedOrder(t, orderRepo, entities.Order{
		OrderNumber: "SO-10", ImportTime: importDay, ScanTime: &scanDay,
		Status: entities.StatusPending, Damage: entities.DamageIntact,
	})

	byImportDay, err := svc.RefreshDaily(context.Background(), importDay.Format("2006-01-02"))
	require.NoError(t, err)
	assert.Zero(t, byImportDay.TotalOrders)

	byScanDay, err := svc.RefreshDaily(context.Background(), scanDay.Format("2006-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, byScanDay.TotalOrders, "заказ относится ко дню сканирования, а не импорта")
}

func TestGetDaily_DefaultsToToday(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	statsRepo := newMemoryStatsRepository()
	svc := NewStatsService(orderRepo, statsRepo, zap.NewNop())

	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-20", ImportTime: time.Now(), Status: entities.StatusPending, Damage: entities.DamageIntact})

	stats, err := svc.GetDaily(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), stats.Date)
	assert.Equal(t, 1, stats.TotalOrders)
}

func TestGetFilterStats(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc := NewStatsService(orderRepo, newMemoryStatsRepository(), zap.NewNop())

	now := time.Now()
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-30", ImportTime: now, ShopName: "旗舰店", Status: entities.StatusPending, Damage: entities.DamageIntact})
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-31", ImportTime: now, ShopName: "旗舰店", Status: entities.StatusProcessed, Damage: entities.DamageDamaged, VideoRecorded: true})
	seedOrder(t, orderRepo, entities.Order{OrderNumber: "SO-32", ImportTime: now, ShopName: "другой", Status: entities.StatusPending, Damage: entities.DamageIntact})

	stats, err := svc.GetFilterStats(context.Background(), filtering.OrderFilter{ShopName: "旗舰店"})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Damaged)
	assert.Equal(t, 1, stats.WithVideo, "признак видео учитывает и флаг записи без файла")
	assert.Equal(t, 1, stats.WithoutVideo)
	assert.Equal(t, stats.Total, stats.WithVideo+stats.WithoutVideo)
}
