package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/events"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/normalize"
	"return-unpack-system/internal/repositories"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/eventbus"
)

const (
	importLockKey = "return-unpack:import:lock"
	importLockTTL = 10 * time.Minute

	settingLastImportAt = "lastImportAt"
)

type ExchangeServiceInterface interface {
	Import(ctx context.Context, file io.Reader, fileName string, options dto.ImportOptionsDTO) (*dto.ImportResultDTO, error)
	Reconcile(ctx context.Context, rows []map[string]interface{}, strategy string) (*entities.ImportStats, []string, error)
	Export(ctx context.Context, filter filtering.OrderFilter, format string) (fileName string, content []byte, mimeType string, err error)
	History(ctx context.Context, limit int) ([]entities.ImportHistoryEntry, error)
}

type ExchangeService struct {
	orderRepo    repositories.OrderRepositoryInterface
	historyRepo  repositories.ImportHistoryRepositoryInterface
	settingsRepo repositories.SettingsRepositoryInterface
	cache        repositories.CacheRepositoryInterface
	bus          *eventbus.Bus
	logger       *zap.Logger

	batchSize  int
	batchPause time.Duration
	maxRecords int

	localLock sync.Mutex
}

func NewExchangeService(
	orderRepo repositories.OrderRepositoryInterface,
	historyRepo repositories.ImportHistoryRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
	batchSize int,
	batchPause time.Duration,
	maxRecords int,
) ExchangeServiceInterface {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExchangeService{
		orderRepo:    orderRepo,
		historyRepo:  historyRepo,
		settingsRepo: settingsRepo,
		cache:        cache,
		bus:          bus,
		logger:       logger,
		batchSize:    batchSize,
		batchPause:   batchPause,
		maxRecords:   maxRecords,
	}
}

// acquireImportLock ставит замок импорта в кеше. Без кеша работает локальный
// мьютекс: для одиночного процесса (CLI) этого достаточно.
func (s *ExchangeService) acquireImportLock(ctx context.Context) (func(), error) {
	if s.cache == nil {
		if !s.localLock.TryLock() {
			return nil, apperrors.ErrImportInProgress
		}
		return s.localLock.Unlock, nil
	}

	locked, err := s.cache.SetNX(ctx, importLockKey, time.Now().Format(time.RFC3339), importLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, apperrors.ErrImportInProgress
	}
	return func() {
		if delErr := s.cache.Del(context.Background(), importLockKey); delErr != nil {
			s.logger.Warn("Не удалось снять замок импорта", zap.Error(delErr))
		}
	}, nil
}

// Import разбирает файл и сводит его записи с хранилищем. Одновременно
// может идти только один импорт: замок держится в кеше с TTL на случай
// падения процесса посреди прогона.
func (s *ExchangeService) Import(ctx context.Context, file io.Reader, fileName string, options dto.ImportOptionsDTO) (*dto.ImportResultDTO, error) {
	strategy := options.Strategy
	if strategy == "" {
		strategy = entities.StrategyFillBlanks
	}

	unlock, err := s.acquireImportLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows, err := ParseImportFile(file, fileName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyImportFile
	}
	if s.maxRecords > 0 && len(rows) > s.maxRecords {
		return nil, apperrors.WithMessage(apperrors.ErrTooManyRecords,
			"файл содержит %d записей при лимите %d", len(rows), s.maxRecords)
	}

	s.logger.Info("Импорт начат",
		zap.String("file", fileName),
		zap.String("strategy", strategy),
		zap.Int("rows", len(rows)),
	)

	stats, dates, err := s.Reconcile(ctx, rows, strategy)
	if err != nil {
		return nil, err
	}

	entry := entities.ImportHistoryEntry{
		FileName:  fileName,
		Strategy:  strategy,
		Total:     stats.Total,
		Created:   stats.Created,
		Updated:   stats.Updated,
		Skipped:   stats.Skipped,
		Failed:    stats.Failed,
		Errors:    stats.Errors,
		StartedAt: stats.Started,
		EndedAt:   stats.Ended,
	}
	if _, err := s.historyRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Не удалось записать историю импорта", zap.Error(err))
	}
	if err := s.settingsRepo.Set(ctx, settingLastImportAt, stats.Ended.Format(time.RFC3339)); err != nil {
		s.logger.Warn("Не удалось обновить отметку последнего импорта", zap.Error(err))
	}

	s.bus.Publish(ctx, events.ImportCompleted{FileName: fileName, Dates: dates})

	s.logger.Info("Импорт завершён",
		zap.String("file", fileName),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration),
	)

	return &dto.ImportResultDTO{
		FileName: fileName,
		Strategy: strategy,
		Stats:    *stats,
		Errors:   stats.Errors,
	}, nil
}

// Reconcile обрабатывает записи в порядке входа, пакетами, с общим
// importTime на весь прогон. Ошибка одной строки не прерывает остальные.
// Возвращает статистику и список затронутых рабочих дат.
func (s *ExchangeService) Reconcile(ctx context.Context, rows []map[string]interface{}, strategy string) (*entities.ImportStats, []string, error) {
	switch strategy {
	case entities.StrategySkipDuplicates, entities.StrategyFillBlanks, entities.StrategyUpdateAll:
	default:
		return nil, nil, apperrors.WithMessage(apperrors.ErrBadRequest, "неизвестная стратегия импорта: %s", strategy)
	}

	importTime := time.Now()
	stats := &entities.ImportStats{
		Total:   len(rows),
		Started: importTime,
	}
	touchedDates := map[string]struct{}{}

	for batchStart := 0; batchStart < len(rows); batchStart += s.batchSize {
		batchEnd := batchStart + s.batchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}

		for i := batchStart; i < batchEnd; i++ {
			if err := s.reconcileRow(ctx, rows[i], strategy, importTime, stats, touchedDates); err != nil {
				code := "STORAGE_ERROR"
				if appErr, ok := apperrors.AsAppError(err); ok {
					code = appErr.Code
				}
				stats.Failed++
				stats.Errors = append(stats.Errors, entities.ImportError{
					Row:     i + 1,
					Code:    code,
					Message: err.Error(),
				})
				s.logger.Debug("Строка импорта отклонена", zap.Int("row", i+1), zap.Error(err))
			}
		}

		// Пауза между пакетами уступает процессор другим операциям.
		if batchEnd < len(rows) && s.batchPause > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	stats.Ended = time.Now()
	stats.Duration = stats.Ended.Sub(stats.Started)

	dates := make([]string, 0, len(touchedDates))
	for date := range touchedDates {
		dates = append(dates, date)
	}
	return stats, dates, nil
}

func (s *ExchangeService) reconcileRow(
	ctx context.Context,
	raw map[string]interface{},
	strategy string,
	importTime time.Time,
	stats *entities.ImportStats,
	touchedDates map[string]struct{},
) error {
	orderNumber, err := normalize.OrderNumber(raw)
	if err != nil {
		return err
	}

	incoming := normalize.Normalize(raw, nil, importTime)
	incoming.OrderNumber = orderNumber

	existing, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil && !apperrors.IsCode(err, apperrors.ErrOrderNotFound.Code) {
		return err
	}

	if existing == nil {
		inserted, err := s.orderRepo.Insert(ctx, incoming)
		if err != nil {
			return err
		}
		stats.Created++
		touchedDates[inserted.EffectiveDate().Format("2006-01-02")] = struct{}{}
		return nil
	}

	switch strategy {
	case entities.StrategySkipDuplicates:
		stats.Skipped++
		return nil
	case entities.StrategyFillBlanks:
		merged := normalize.FillBlanks(*existing, incoming)
		saved, err := s.orderRepo.Save(ctx, merged)
		if err != nil {
			return err
		}
		stats.Updated++
		touchedDates[saved.EffectiveDate().Format("2006-01-02")] = struct{}{}
	case entities.StrategyUpdateAll:
		merged := normalize.Overwrite(*existing, incoming)
		saved, err := s.orderRepo.Save(ctx, merged)
		if err != nil {
			return err
		}
		stats.Updated++
		touchedDates[saved.EffectiveDate().Format("2006-01-02")] = struct{}{}
	}
	return nil
}

func (s *ExchangeService) History(ctx context.Context, limit int) ([]entities.ImportHistoryEntry, error) {
	return s.historyRepo.List(ctx, limit)
}

// Export выгружает отфильтрованные заказы в csv, xlsx или json.
func (s *ExchangeService) Export(ctx context.Context, filter filtering.OrderFilter, format string) (string, []byte, string, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter, "importTime", "desc")
	if err != nil {
		return "", nil, "", err
	}

	stamp := time.Now().Format("20060102_150405")
	switch format {
	case "", "csv":
		content, err := exportCSV(orders)
		if err != nil {
			return "", nil, "", err
		}
		return fmt.Sprintf("orders_export_%s.csv", stamp), content, "text/csv; charset=utf-8", nil
	case "xlsx":
		content, err := exportXLSX(orders)
		if err != nil {
			return "", nil, "", err
		}
		return fmt.Sprintf("orders_export_%s.xlsx", stamp), content,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case "json":
		content, err := json.MarshalIndent(dto.OrdersToDTO(orders), "", "  ")
		if err != nil {
			return "", nil, "", err
		}
		return fmt.Sprintf("orders_export_%s.json", stamp), content, "application/json", nil
	default:
		return "", nil, "", apperrors.WithMessage(apperrors.ErrUnsupportedFormat, "неподдерживаемый формат экспорта: %s", format)
	}
}

func exportValue(order *entities.Order, field string) string {
	timeFormat := "2006-01-02 15:04:05"
	switch field {
	case "orderNumber":
		return order.OrderNumber
	case "expressNumber":
		return order.ExpressNumber
	case "trackingNumber":
		return order.TrackingNumber
	case "skuInfo":
		return order.SkuInfo
	case "shopName":
		return order.ShopName
	case "notes":
		return order.Notes
	case "status":
		return normalize.StatusLabels[order.Status]
	case "damage":
		return normalize.DamageLabels[order.Damage]
	case "importTime":
		return order.ImportTime.Format(timeFormat)
	case "scanTime":
		if order.ScanTime == nil {
			return ""
		}
		return order.ScanTime.Format(timeFormat)
	case "videoFile":
		return order.VideoFile
	default:
		return ""
	}
}

func exportCSV(orders []entities.Order) ([]byte, error) {
	var buf bytes.Buffer
	// BOM, иначе Excel прочитает китайские заголовки как кракозябры.
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(&buf)
	header := make([]string, 0, len(normalize.ExportColumns))
	for _, field := range normalize.ExportColumns {
		header = append(header, normalize.DisplayLabels[field])
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for i := range orders {
		record := make([]string, 0, len(normalize.ExportColumns))
		for _, field := range normalize.ExportColumns {
			record = append(record, exportValue(&orders[i], field))
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func exportXLSX(orders []entities.Order) ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)

	header := make([]interface{}, 0, len(normalize.ExportColumns))
	for _, field := range normalize.ExportColumns {
		header = append(header, normalize.DisplayLabels[field])
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	headerStyle, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = book.SetCellStyle(sheet, "A1", lastCell, headerStyle)
	}

	for i := range orders {
		row := make([]interface{}, 0, len(normalize.ExportColumns))
		for _, field := range normalize.ExportColumns {
			row = append(row, exportValue(&orders[i], field))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
