package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/events"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/repositories"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/eventbus"
	"return-unpack-system/pkg/filestorage"
)

// SnapshotSchemaVersion растёт вместе с миграциями схемы.
const SnapshotSchemaVersion = 3

const (
	backupPrefix         = "backups"
	settingLastCleanupAt = "lastCleanupAt"
)

type BackupServiceInterface interface {
	CreateSnapshot(ctx context.Context) (*entities.Snapshot, string, error)
	Restore(ctx context.Context, snapshot entities.Snapshot) error
	Cleanup(ctx context.Context, days int, includeVideos bool) (*dto.CleanupResultDTO, error)
	ClearAll(ctx context.Context) error
}

type BackupService struct {
	orderRepo    repositories.OrderRepositoryInterface
	statsRepo    repositories.StatsRepositoryInterface
	settingsRepo repositories.SettingsRepositoryInterface
	historyRepo  repositories.ImportHistoryRepositoryInterface
	storage      filestorage.FileStorageInterface
	bus          *eventbus.Bus
	logger       *zap.Logger
}

func NewBackupService(
	orderRepo repositories.OrderRepositoryInterface,
	statsRepo repositories.StatsRepositoryInterface,
	settingsRepo repositories.SettingsRepositoryInterface,
	historyRepo repositories.ImportHistoryRepositoryInterface,
	storage filestorage.FileStorageInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) BackupServiceInterface {
	return &BackupService{
		orderRepo:    orderRepo,
		statsRepo:    statsRepo,
		settingsRepo: settingsRepo,
		historyRepo:  historyRepo,
		storage:      storage,
		bus:          bus,
		logger:       logger,
	}
}

// CreateSnapshot сериализует все четыре коллекции и кладёт копию снимка в
// файловое хранилище. Возвращает снимок и путь к файлу.
func (s *BackupService) CreateSnapshot(ctx context.Context) (*entities.Snapshot, string, error) {
	orders, err := s.orderRepo.FindAll(ctx, filtering.OrderFilter{}, "createdAt", "asc")
	if err != nil {
		return nil, "", err
	}
	stats, err := s.statsRepo.All(ctx)
	if err != nil {
		return nil, "", err
	}
	settings, err := s.settingsRepo.All(ctx)
	if err != nil {
		return nil, "", err
	}
	history, err := s.historyRepo.All(ctx)
	if err != nil {
		return nil, "", err
	}

	snapshot := &entities.Snapshot{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		SchemaVersion: SnapshotSchemaVersion,
		Collections: entities.SnapshotCollections{
			Orders:        orders,
			Stats:         stats,
			Settings:      settings,
			ImportHistory: history,
		},
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, "", err
	}
	filePath, err := s.storage.SaveUnique(bytes.NewReader(payload), fmt.Sprintf("snapshot-%s.json", snapshot.ID), backupPrefix)
	if err != nil {
		s.logger.Error("Не удалось сохранить файл снимка", zap.Error(err))
		return nil, "", err
	}

	s.logger.Info("Снимок создан",
		zap.String("id", snapshot.ID),
		zap.Int("orders", len(orders)),
		zap.String("file", filePath),
	)
	return snapshot, filePath, nil
}

// Restore затирает текущие данные и восстанавливает все коллекции из
// снимка с исходными суррогатными ключами.
func (s *BackupService) Restore(ctx context.Context, snapshot entities.Snapshot) error {
	if snapshot.SchemaVersion <= 0 || snapshot.SchemaVersion > SnapshotSchemaVersion {
		return apperrors.WithMessage(apperrors.ErrInvalidSnapshot,
			"снимок со схемой версии %d не поддерживается", snapshot.SchemaVersion)
	}
	for _, order := range snapshot.Collections.Orders {
		if order.OrderNumber == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, "в снимке есть заказ без номера")
		}
	}

	if err := s.clearCollections(ctx); err != nil {
		return err
	}

	if err := s.orderRepo.RestoreAll(ctx, snapshot.Collections.Orders); err != nil {
		return err
	}
	if err := s.statsRepo.RestoreAll(ctx, snapshot.Collections.Stats); err != nil {
		return err
	}
	if err := s.settingsRepo.RestoreAll(ctx, snapshot.Collections.Settings); err != nil {
		return err
	}
	if err := s.historyRepo.RestoreAll(ctx, snapshot.Collections.ImportHistory); err != nil {
		return err
	}

	s.logger.Info("Хранилище восстановлено из снимка",
		zap.String("id", snapshot.ID),
		zap.Int("orders", len(snapshot.Collections.Orders)),
	)
	s.bus.Publish(ctx, events.StoreCleared{})
	return nil
}

// Cleanup удаляет записи старше days дней по рабочей дате и, по запросу,
// их видеофайлы.
func (s *BackupService) Cleanup(ctx context.Context, days int, includeVideos bool) (*dto.CleanupResultDTO, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	found, deleted, videoFiles, err := s.orderRepo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	videosDeleted := 0
	if includeVideos {
		for _, videoFile := range videoFiles {
			if err := s.storage.Delete(videoFile); err != nil {
				s.logger.Warn("Не удалось удалить осиротевший видеофайл",
					zap.String("videoFile", videoFile), zap.Error(err))
				continue
			}
			videosDeleted++
		}
	}

	if err := s.settingsRepo.Set(ctx, settingLastCleanupAt, time.Now().Format(time.RFC3339)); err != nil {
		s.logger.Warn("Не удалось обновить отметку последней очистки", zap.Error(err))
	}

	s.logger.Info("Очистка по возрасту завершена",
		zap.Int("days", days),
		zap.Int("found", found),
		zap.Int("deleted", deleted),
		zap.Int("videosDeleted", videosDeleted),
	)
	s.bus.Publish(ctx, events.StoreCleared{})

	return &dto.CleanupResultDTO{
		Found:         found,
		Deleted:       deleted,
		VideosDeleted: videosDeleted,
		Cutoff:        cutoff,
	}, nil
}

// ClearAll — необратимая очистка всех четырёх коллекций. Подтверждение
// обязано собрать вызывающее HTTP-ручку.
func (s *BackupService) ClearAll(ctx context.Context) error {
	if err := s.clearCollections(ctx); err != nil {
		return err
	}
	s.logger.Warn("Хранилище полностью очищено")
	s.bus.Publish(ctx, events.StoreCleared{})
	return nil
}

func (s *BackupService) clearCollections(ctx context.Context) error {
	if err := s.orderRepo.Clear(ctx); err != nil {
		return err
	}
	if err := s.statsRepo.Clear(ctx); err != nil {
		return err
	}
	if err := s.settingsRepo.Clear(ctx); err != nil {
		return err
	}
	return s.historyRepo.Clear(ctx)
}
