package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/normalize"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/eventbus"
)

func newTestExchangeService(orderRepo *memoryOrderRepository, cache *memoryCacheRepository) (ExchangeServiceInterface, *memoryImportHistoryRepository, *memorySettingsRepository) {
	logger := zap.NewNop()
	historyRepo := newMemoryImportHistoryRepository()
	settingsRepo := newMemorySettingsRepository()
	svc := NewExchangeService(orderRepo, historyRepo, settingsRepo, cache, eventbus.New(logger), logger, 50, 0, 10000)
	return svc, historyRepo, settingsRepo
}

func TestReconcile_CreatesNewOrders(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	rows := []map[string]interface{}{
		{"订单编号": "SO-1001", "店铺名称": "旗舰店", "状态": "待处理"},
		{"orderNumber": "SO-1002", "shopName": "Second Shop"},
	}

	stats, dates, err := svc.Reconcile(context.Background(), rows, entities.StrategyFillBlanks)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Created)
	assert.Zero(t, stats.Updated)
	assert.Zero(t, stats.Failed)
	assert.Len(t, dates, 1, "обе записи без scanTime попадают в дату импорта")

	first, err := orderRepo.GetByNumber(context.Background(), "SO-1001")
	require.NoError(t, err)
	assert.Equal(t, "旗舰店", first.ShopName)
	assert.Equal(t, entities.StatusPending, first.Status)
}

func TestReconcile_SharedImportTime(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	rows := []map[string]interface{}{
		{"orderNumber": "SO-2001"},
		{"orderNumber": "SO-2002"},
		{"orderNumber": "SO-2003"},
	}

	_, _, err := svc.Reconcile(context.Background(), rows, entities.StrategyFillBlanks)
	require.NoError(t, err)

	first, err := orderRepo.GetByNumber(context.Background(), "SO-2001")
	require.NoError(t, err)
	last, err := orderRepo.GetByNumber(context.Background(), "SO-2003")
	require.NoError(t, err)
	assert.True(t, first.ImportTime.Equal(last.ImportTime), "у всех строк прогона одно importTime")
}

func TestReconcile_SkipDuplicates(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-3001", "notes": "оригинал"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	stats, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-3001", "notes": "повтор"},
		{"orderNumber": "SO-3002"},
	}, entities.StrategySkipDuplicates)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Created)
	assert.Zero(t, stats.Updated)

	kept, err := orderRepo.GetByNumber(context.Background(), "SO-3001")
	require.NoError(t, err)
	assert.Equal(t, "оригинал", kept.Notes, "при skip_duplicates существующая запись не трогается")
}

func TestReconcile_FillBlanks(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-4001", "shopName": "Старый магазин", "notes": ""},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	stats, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-4001", "shopName": "Новый магазин", "notes": "добавленная заметка", "trackingNumber": "RT-77"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	merged, err := orderRepo.GetByNumber(context.Background(), "SO-4001")
	require.NoError(t, err)
	assert.Equal(t, "Старый магазин", merged.ShopName, "заполненное поле не перезаписывается")
	assert.Equal(t, "добавленная заметка", merged.Notes, "пустое поле заполняется из файла")
	assert.Equal(t, "RT-77", merged.TrackingNumber)
}

func TestReconcile_UpdateAll(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-5001", "shopName": "Старый магазин", "status": "已处理"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	_, _, err = svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-5001", "shopName": "Новый магазин"},
	}, entities.StrategyUpdateAll)
	require.NoError(t, err)

	overwritten, err := orderRepo.GetByNumber(context.Background(), "SO-5001")
	require.NoError(t, err)
	assert.Equal(t, "Новый магазин", overwritten.ShopName, "update_all перекрывает существующее значение")
}

func TestReconcile_RowErrorDoesNotStopRun(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	rows := []map[string]interface{}{
		{"orderNumber": "SO-6001"},
		{"shopName": "магазин без номера"},
		{"orderNumber": "SO-6003"},
	}

	stats, _, err := svc.Reconcile(context.Background(), rows, entities.StrategyFillBlanks)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, 2, stats.Errors[0].Row, "номер строки считается с единицы")
	assert.Equal(t, apperrors.ErrEmptyOrderNumber.Code, stats.Errors[0].Code)

	_, err = orderRepo.GetByNumber(context.Background(), "SO-6003")
	assert.NoError(t, err, "строки после ошибочной обрабатываются")
}

func TestReconcile_UnknownStrategy(t *testing.T) {
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-7001"},
	}, "merge_everything")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest.Code))
}

func TestImport_EndToEndCSV(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, historyRepo, settingsRepo := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	csv := "订单编号,店铺名称,备注\nSO-8001,旗舰店,первая\nSO-8002,旗舰店,вторая\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv), "orders.csv", dto.ImportOptionsDTO{})
	require.NoError(t, err)

	assert.Equal(t, entities.StrategyFillBlanks, result.Strategy, "стратегия по умолчанию — fill_blanks")
	assert.Equal(t, 2, result.Stats.Created)

	history, err := historyRepo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "orders.csv", history[0].FileName)
	assert.Equal(t, 2, history[0].Created)

	_, found, err := settingsRepo.Get(context.Background(), settingLastImportAt)
	require.NoError(t, err)
	assert.True(t, found, "после импорта фиксируется отметка lastImportAt")
}

func TestImport_LockBlocksParallelRun(t *testing.T) {
	cache := newMemoryCacheRepository()
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), cache)

	// Имитация незавершённого импорта: замок уже занят другим процессом.
	locked, err := cache.SetNX(context.Background(), importLockKey, time.Now().Format(time.RFC3339), importLockTTL)
	require.NoError(t, err)
	require.True(t, locked)

	_, err = svc.Import(context.Background(), strings.NewReader("orderNumber\nSO-9001\n"), "orders.csv", dto.ImportOptionsDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrImportInProgress.Code))
}

func TestImport_ReleasesLock(t *testing.T) {
	cache := newMemoryCacheRepository()
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), cache)

	_, err := svc.Import(context.Background(), strings.NewReader("orderNumber\nSO-9101\n"), "orders.csv", dto.ImportOptionsDTO{})
	require.NoError(t, err)

	value, err := cache.Get(context.Background(), importLockKey)
	require.NoError(t, err)
	assert.Empty(t, value, "замок снимается после завершения импорта")
}

func TestImport_WithoutCacheRecordsHistory(t *testing.T) {
	logger := zap.NewNop()
	historyRepo := newMemoryImportHistoryRepository()
	settingsRepo := newMemorySettingsRepository()
	svc := NewExchangeService(
		newMemoryOrderRepository(), historyRepo, settingsRepo,
		nil, eventbus.New(logger), logger, 50, 0, 10000,
	)

	// Консольный импорт работает без Redis, но след в истории оставляет.
	result, err := svc.Import(context.Background(), strings.NewReader("orderNumber\nSO-9201\n"), "orders.csv", dto.ImportOptionsDTO{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Created)

	entries, err := historyRepo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "orders.csv", entries[0].FileName)
	assert.Equal(t, 1, entries[0].Created)

	lastImport, ok, err := settingsRepo.Get(context.Background(), settingLastImportAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, lastImport)
}

func TestImport_WithoutCacheBlocksParallelRun(t *testing.T) {
	logger := zap.NewNop()
	svc := NewExchangeService(
		newMemoryOrderRepository(), newMemoryImportHistoryRepository(), newMemorySettingsRepository(),
		nil, eventbus.New(logger), logger, 50, 0, 10000,
	).(*ExchangeService)

	unlock, err := svc.acquireImportLock(context.Background())
	require.NoError(t, err)

	_, err = svc.acquireImportLock(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrImportInProgress.Code))

	unlock()
	unlock2, err := svc.acquireImportLock(context.Background())
	require.NoError(t, err)
	unlock2()
}

func TestImport_EmptyFile(t *testing.T) {
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), newMemoryCacheRepository())

	_, err := svc.Import(context.Background(), strings.NewReader("orderNumber\n"), "orders.csv", dto.ImportOptionsDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrEmptyImportFile.Code))
}

func TestImport_TooManyRecords(t *testing.T) {
	logger := zap.NewNop()
	svc := NewExchangeService(
		newMemoryOrderRepository(), newMemoryImportHistoryRepository(), newMemorySettingsRepository(),
		newMemoryCacheRepository(), eventbus.New(logger), logger, 50, 0, 2,
	)

	csv := "orderNumber\nSO-1\nSO-2\nSO-3\n"
	_, err := svc.Import(context.Background(), strings.NewReader(csv), "orders.csv", dto.ImportOptionsDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrTooManyRecords.Code))
}

func TestImport_UnsupportedFormat(t *testing.T) {
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), newMemoryCacheRepository())

	_, err := svc.Import(context.Background(), strings.NewReader("что угодно"), "orders.pdf", dto.ImportOptionsDTO{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnsupportedFormat.Code))
}

func TestExport_CSVRoundTrip(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-10001", "shopName": "旗舰店", "status": "已处理", "damage": "破损"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	fileName, content, mimeType, err := svc.Export(context.Background(), filtering.OrderFilter{}, "csv")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fileName, "orders_export_"))
	assert.True(t, strings.HasSuffix(fileName, ".csv"))
	assert.Equal(t, "text/csv; charset=utf-8", mimeType)

	// Выгрузка читается обратно тем же парсером: китайские заголовки и
	// подписи значений сводятся к каноническим полям.
	rows, err := ParseImportFile(strings.NewReader(string(content)), fileName)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	reimported := normalize.Normalize(rows[0], nil, time.Now())
	assert.Equal(t, entities.StatusProcessed, reimported.Status)
	assert.Equal(t, entities.DamageDamaged, reimported.Damage)
	assert.Equal(t, "旗舰店", reimported.ShopName)
}

func TestExport_JSON(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-10002"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	_, content, mimeType, err := svc.Export(context.Background(), filtering.OrderFilter{}, "json")
	require.NoError(t, err)

	assert.Equal(t, "application/json", mimeType)

	var exported []dto.OrderDTO
	require.NoError(t, json.Unmarshal(content, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "SO-10002", exported[0].OrderNumber)
}

func TestExport_FilterApplies(t *testing.T) {
	orderRepo := newMemoryOrderRepository()
	svc, _, _ := newTestExchangeService(orderRepo, newMemoryCacheRepository())

	_, _, err := svc.Reconcile(context.Background(), []map[string]interface{}{
		{"orderNumber": "SO-10003", "status": "已处理"},
		{"orderNumber": "SO-10004", "status": "待处理"},
	}, entities.StrategyFillBlanks)
	require.NoError(t, err)

	_, content, _, err := svc.Export(context.Background(), filtering.OrderFilter{Status: "processed"}, "json")
	require.NoError(t, err)

	var exported []dto.OrderDTO
	require.NoError(t, json.Unmarshal(content, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "SO-10003", exported[0].OrderNumber)
}

func TestExport_UnknownFormat(t *testing.T) {
	svc, _, _ := newTestExchangeService(newMemoryOrderRepository(), newMemoryCacheRepository())

	_, _, _, err := svc.Export(context.Background(), filtering.OrderFilter{}, "xml")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnsupportedFormat.Code))
}
