package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/normalize"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/types"
)

// memoryOrderRepository — хранилище заказов в памяти для тестов сервисов.
// Повторяет контракт настоящего репозитория: уникальность номера,
// неизменяемость номера и createdAt, upsert в Update.
type memoryOrderRepository struct {
	mu     sync.Mutex
	nextID uint64
	orders map[string]entities.Order
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{orders: map[string]entities.Order{}}
}

func (r *memoryOrderRepository) GetByNumber(_ context.Context, orderNumber string) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	return &order, nil
}

func (r *memoryOrderRepository) Insert(_ context.Context, order entities.Order) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderNumber]; ok {
		return nil, apperrors.WithMessage(apperrors.ErrDuplicateOrderNumber, "заказ %s уже существует", order.OrderNumber)
	}
	r.nextID++
	order.ID = r.nextID
	r.orders[order.OrderNumber] = order
	return &order, nil
}

func (r *memoryOrderRepository) Save(_ context.Context, order entities.Order) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.OrderNumber]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	order.ID = existing.ID
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = time.Now()
	r.orders[order.OrderNumber] = order
	return &order, nil
}

func (r *memoryOrderRepository) Update(ctx context.Context, orderNumber string, patch map[string]interface{}) (*entities.Order, bool, error) {
	now := time.Now()
	existing, err := r.GetByNumber(ctx, orderNumber)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.ErrOrderNotFound.Code) {
			return nil, false, err
		}
		created := normalize.Normalize(patch, nil, now)
		created.OrderNumber = orderNumber
		inserted, err := r.Insert(ctx, created)
		return inserted, true, err
	}
	patched := normalize.ApplyPatch(*existing, patch, now)
	saved, err := r.Save(ctx, patched)
	return saved, false, err
}

func (r *memoryOrderRepository) Delete(_ context.Context, orderNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[orderNumber]; !ok {
		return apperrors.ErrOrderNotFound
	}
	delete(r.orders, orderNumber)
	return nil
}

func (r *memoryOrderRepository) all(filter filtering.OrderFilter) []entities.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Match(&order) {
			result = append(result, order)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *memoryOrderRepository) Paginate(_ context.Context, page, pageSize int, filter filtering.OrderFilter, _, _ string) ([]entities.Order, types.Pagination, error) {
	matched := r.all(filter)
	pagination := types.NewPagination(page, pageSize, len(matched))
	start := pagination.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pagination.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], pagination, nil
}

func (r *memoryOrderRepository) FindAll(_ context.Context, filter filtering.OrderFilter, _, _ string) ([]entities.Order, error) {
	return r.all(filter), nil
}

func (r *memoryOrderRepository) ScanAll(_ context.Context, fn func(order *entities.Order) error) error {
	for _, order := range r.all(filtering.OrderFilter{}) {
		order := order
		if err := fn(&order); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryOrderRepository) Search(ctx context.Context, keyword string, limit int) ([]entities.Order, error) {
	matched := r.all(filtering.OrderFilter{Keyword: strings.TrimSpace(keyword)})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memoryOrderRepository) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, int, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var videoFiles []string
	found := 0
	for number, order := range r.orders {
		retention := order.RetentionDate()
		if retention.IsZero() || !retention.Before(cutoff) {
			continue
		}
		found++
		if order.VideoFile != "" {
			videoFiles = append(videoFiles, order.VideoFile)
		}
		delete(r.orders, number)
	}
	return found, found, videoFiles, nil
}

func (r *memoryOrderRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = map[string]entities.Order{}
	r.nextID = 0
	return nil
}

func (r *memoryOrderRepository) RestoreAll(_ context.Context, orders []entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range orders {
		r.orders[order.OrderNumber] = order
		if order.ID > r.nextID {
			r.nextID = order.ID
		}
	}
	return nil
}

type memoryStatsRepository struct {
	mu    sync.Mutex
	stats map[string]entities.DailyStats
}

func newMemoryStatsRepository() *memoryStatsRepository {
	return &memoryStatsRepository{stats: map[string]entities.DailyStats{}}
}

func (r *memoryStatsRepository) Get(_ context.Context, date string) (*entities.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[date]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}

func (r *memoryStatsRepository) Upsert(_ context.Context, stats entities.DailyStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[stats.Date] = stats
	return nil
}

func (r *memoryStatsRepository) All(_ context.Context) ([]entities.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.DailyStats, 0, len(r.stats))
	for _, stats := range r.stats {
		result = append(result, stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (r *memoryStatsRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = map[string]entities.DailyStats{}
	return nil
}

func (r *memoryStatsRepository) RestoreAll(ctx context.Context, stats []entities.DailyStats) error {
	for _, entry := range stats {
		if err := r.Upsert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

type memorySettingsRepository struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func newMemorySettingsRepository() *memorySettingsRepository {
	return &memorySettingsRepository{values: map[string]interface{}{}}
}

func (r *memorySettingsRepository) Get(_ context.Context, key string) (interface{}, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[key]
	return value, ok, nil
}

func (r *memorySettingsRepository) Set(_ context.Context, key string, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *memorySettingsRepository) All(_ context.Context) ([]entities.SettingsEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.SettingsEntry, 0, len(r.values))
	for key, value := range r.values {
		result = append(result, entities.SettingsEntry{Key: key, Value: value, UpdatedAt: time.Now()})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (r *memorySettingsRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = map[string]interface{}{}
	return nil
}

func (r *memorySettingsRepository) RestoreAll(ctx context.Context, entries []entities.SettingsEntry) error {
	for _, entry := range entries {
		if err := r.Set(ctx, entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

type memoryImportHistoryRepository struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entities.ImportHistoryEntry
}

func newMemoryImportHistoryRepository() *memoryImportHistoryRepository {
	return &memoryImportHistoryRepository{}
}

func (r *memoryImportHistoryRepository) Append(_ context.Context, entry entities.ImportHistoryEntry) (*entities.ImportHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return &entry, nil
}

func (r *memoryImportHistoryRepository) List(_ context.Context, limit int) ([]entities.ImportHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entities.ImportHistoryEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		result = append(result, r.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *memoryImportHistoryRepository) All(_ context.Context) ([]entities.ImportHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.ImportHistoryEntry(nil), r.entries...), nil
}

func (r *memoryImportHistoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.nextID = 0
	return nil
}

func (r *memoryImportHistoryRepository) RestoreAll(_ context.Context, entries []entities.ImportHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	for _, entry := range entries {
		if entry.ID > r.nextID {
			r.nextID = entry.ID
		}
	}
	return nil
}

// memoryCacheRepository повторяет семантику SetNX настоящего Redis-кеша.
type memoryCacheRepository struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCacheRepository() *memoryCacheRepository {
	return &memoryCacheRepository{values: map[string]string{}}
}

func (r *memoryCacheRepository) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = toString(value)
	return nil
}

func (r *memoryCacheRepository) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; ok {
		return false, nil
	}
	r.values[key] = toString(value)
	return true, nil
}

func (r *memoryCacheRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key], nil
}

func (r *memoryCacheRepository) Del(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return "1"
}

// memoryFileStorage собирает сохранённые и удалённые файлы для проверок.
type memoryFileStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (s *memoryFileStorage) Save(_ io.Reader, fileName, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := prefix + "/" + fileName
	s.saved = append(s.saved, filePath)
	return filePath, nil
}

func (s *memoryFileStorage) SaveUnique(_ io.Reader, originalFileName, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := prefix + "/" + originalFileName
	s.saved = append(s.saved, filePath)
	return filePath, nil
}

func (s *memoryFileStorage) Delete(filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, filePath)
	return nil
}
