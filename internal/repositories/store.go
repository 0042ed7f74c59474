package repositories

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/database/postgresql"
)

// Store — единственное на процесс подключение к хранилищу. Open
// идемпотентен: повторный вызов на открытом хранилище ничего не делает.
type Store struct {
	dsn    string
	logger *zap.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewStore(dsn string, logger *zap.Logger) *Store {
	return &Store{dsn: dsn, logger: logger}
}

// Open подключается к БД, применяет миграции и доводит вторичные индексы.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return nil
	}
	if s.dsn == "" {
		return apperrors.ErrUnsupported
	}

	if err := postgresql.Migrate(s.dsn, s.logger); err != nil {
		return err
	}

	pool, err := postgresql.ConnectDB(ctx, s.dsn, s.logger)
	if err != nil {
		return err
	}
	s.pool = pool

	s.ensureIndexes(ctx)
	return nil
}

// Pool возвращает пул соединений открытого хранилища.
func (s *Store) Pool() (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool == nil {
		return nil, apperrors.ErrNotInitialized
	}
	return s.pool, nil
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

// secondaryIndexes — необязательные индексы под типовые фильтры. Их
// отсутствие деградирует скорость, но не корректность.
var secondaryIndexes = map[string]string{
	"idx_orders_express_number":  "CREATE INDEX IF NOT EXISTS idx_orders_express_number ON orders (express_number)",
	"idx_orders_tracking_number": "CREATE INDEX IF NOT EXISTS idx_orders_tracking_number ON orders (tracking_number)",
	"idx_orders_import_time":     "CREATE INDEX IF NOT EXISTS idx_orders_import_time ON orders (import_time)",
	"idx_orders_scan_time":       "CREATE INDEX IF NOT EXISTS idx_orders_scan_time ON orders (scan_time)",
	"idx_orders_status":          "CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)",
	"idx_orders_damage":          "CREATE INDEX IF NOT EXISTS idx_orders_damage ON orders (damage)",
	"idx_orders_shop_name":       "CREATE INDEX IF NOT EXISTS idx_orders_shop_name ON orders (shop_name)",
	"idx_orders_sku_info":        "CREATE INDEX IF NOT EXISTS idx_orders_sku_info ON orders (sku_info)",
	"idx_orders_video_file":      "CREATE INDEX IF NOT EXISTS idx_orders_video_file ON orders (video_file)",
	"idx_orders_created_at":      "CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at)",
	"idx_orders_updated_at":      "CREATE INDEX IF NOT EXISTS idx_orders_updated_at ON orders (updated_at)",
}

// ensureIndexes создаёт недостающие вторичные индексы. Ошибка создания
// логируется громко, но открытие хранилища не прерывает.
func (s *Store) ensureIndexes(ctx context.Context) {
	for name, ddl := range secondaryIndexes {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			s.logger.Error("⚠️ Не удалось создать вторичный индекс, выборки по этому полю пойдут полным сканом",
				zap.String("index", name),
				zap.Error(err),
			)
		}
	}
}
