package repositories

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/filtering"
	"return-unpack-system/internal/normalize"
	apperrors "return-unpack-system/pkg/errors"
	"return-unpack-system/pkg/types"
)

type OrderRepositoryInterface interface {
	GetByNumber(ctx context.Context, orderNumber string) (*entities.Order, error)
	Insert(ctx context.Context, order entities.Order) (*entities.Order, error)
	Save(ctx context.Context, order entities.Order) (*entities.Order, error)
	Update(ctx context.Context, orderNumber string, patch map[string]interface{}) (*entities.Order, bool, error)
	Delete(ctx context.Context, orderNumber string) error
	Paginate(ctx context.Context, page, pageSize int, filter filtering.OrderFilter, sortField, sortOrder string) ([]entities.Order, types.Pagination, error)
	FindAll(ctx context.Context, filter filtering.OrderFilter, sortField, sortOrder string) ([]entities.Order, error)
	ScanAll(ctx context.Context, fn func(order *entities.Order) error) error
	Search(ctx context.Context, keyword string, limit int) ([]entities.Order, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (found int, deleted int, videoFiles []string, err error)
	Clear(ctx context.Context) error
	RestoreAll(ctx context.Context, orders []entities.Order) error
}

type OrderRepository struct {
	store  *Store
	logger *zap.Logger
	psql   sq.StatementBuilderType
}

func NewOrderRepository(store *Store, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{
		store:  store,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"id", "order_number", "express_number", "tracking_number", "sku_info",
	"shop_name", "notes", "status", "damage", "import_time", "scan_time",
	"video_file", "video_recorded", "video_recorded_at", "video_duration",
	"video_size", "extra", "created_at", "updated_at",
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var order entities.Order
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.ExpressNumber, &order.TrackingNumber,
		&order.SkuInfo, &order.ShopName, &order.Notes, &order.Status, &order.Damage,
		&order.ImportTime, &order.ScanTime, &order.VideoFile, &order.VideoRecorded,
		&order.VideoRecordedAt, &order.VideoDuration, &order.VideoSize, &order.Extra,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func orderValues(order entities.Order) map[string]interface{} {
	extra := order.Extra
	if extra == nil {
		extra = map[string]interface{}{}
	}
	return map[string]interface{}{
		"order_number":      order.OrderNumber,
		"express_number":    order.ExpressNumber,
		"tracking_number":   order.TrackingNumber,
		"sku_info":          order.SkuInfo,
		"shop_name":         order.ShopName,
		"notes":             order.Notes,
		"status":            string(order.Status),
		"damage":            string(order.Damage),
		"import_time":       order.ImportTime,
		"scan_time":         order.ScanTime,
		"video_file":        order.VideoFile,
		"video_recorded":    order.VideoRecorded,
		"video_recorded_at": order.VideoRecordedAt,
		"video_duration":    order.VideoDuration,
		"video_size":        order.VideoSize,
		"extra":             extra,
		"created_at":        order.CreatedAt,
		"updated_at":        order.UpdatedAt,
	}
}

func (r *OrderRepository) selectOrders() sq.SelectBuilder {
	return r.psql.Select(orderColumns...).From("orders")
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*entities.Order, error) {
	if err := normalize.ValidateOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}
	return r.getByNumber(ctx, pool, orderNumber, false)
}

func (r *OrderRepository) getByNumber(ctx context.Context, q querier, orderNumber string, forUpdate bool) (*entities.Order, error) {
	builder := r.selectOrders().Where(sq.Eq{"order_number": orderNumber})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	sqlText, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(q.QueryRow(ctx, sqlText, args...))
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order entities.Order) (*entities.Order, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}
	return r.insert(ctx, pool, order)
}

func (r *OrderRepository) insert(ctx context.Context, q querier, order entities.Order) (*entities.Order, error) {
	sqlText, args, err := r.psql.Insert("orders").
		SetMap(orderValues(order)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := q.QueryRow(ctx, sqlText, args...).Scan(&order.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.WithMessage(apperrors.ErrDuplicateOrderNumber, "заказ с номером %s уже существует", order.OrderNumber)
		}
		return nil, err
	}
	return &order, nil
}

// Save перезаписывает запись целиком по суррогатному id.
func (r *OrderRepository) Save(ctx context.Context, order entities.Order) (*entities.Order, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	order.UpdatedAt = time.Now()
	values := orderValues(order)
	delete(values, "order_number")
	delete(values, "created_at")

	sqlText, args, err := r.psql.Update("orders").
		SetMap(values).
		Where(sq.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := pool.Exec(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrOrderNotFound
	}
	return &order, nil
}

// Update — upsert по бизнес-ключу: отсутствующая запись создаётся из
// patch, существующая мержится с ним под блокировкой строки. Узкая гонка
// по уникальному ключу гасится одним повтором, дальше UPDATE_CONFLICT.
func (r *OrderRepository) Update(ctx context.Context, orderNumber string, patch map[string]interface{}) (*entities.Order, bool, error) {
	if err := normalize.ValidateOrderNumber(orderNumber); err != nil {
		return nil, false, err
	}
	pool, err := r.store.Pool()
	if err != nil {
		return nil, false, err
	}

	var (
		result  *entities.Order
		created bool
	)
	for attempt := 0; attempt < 2; attempt++ {
		err = WithTx(ctx, pool, func(tx pgx.Tx) error {
			now := time.Now()

			existing, getErr := r.getByNumber(ctx, tx, orderNumber, true)
			if getErr != nil && !apperrors.IsCode(getErr, apperrors.ErrOrderNotFound.Code) {
				return getErr
			}

			if existing == nil {
				order := normalize.Normalize(patch, nil, now)
				order.OrderNumber = orderNumber
				if order.VideoRecorded && order.ScanTime == nil {
					scanTime := now
					order.ScanTime = &scanTime
				}
				inserted, insErr := r.insert(ctx, tx, order)
				if insErr != nil {
					return insErr
				}
				result, created = inserted, true
				return nil
			}

			merged := normalize.ApplyPatch(*existing, patch, now)
			values := orderValues(merged)
			delete(values, "order_number")
			delete(values, "created_at")

			sqlText, args, buildErr := r.psql.Update("orders").
				SetMap(values).
				Where(sq.Eq{"id": merged.ID}).
				ToSql()
			if buildErr != nil {
				return buildErr
			}
			if _, execErr := tx.Exec(ctx, sqlText, args...); execErr != nil {
				return execErr
			}
			result, created = &merged, false
			return nil
		})

		if err == nil {
			return result, created, nil
		}
		// Повтор имеет смысл только при гонке вставки по тому же ключу.
		if !apperrors.IsCode(err, apperrors.ErrDuplicateOrderNumber.Code) && !isUniqueViolation(err) {
			return nil, false, err
		}
		r.logger.Warn("Гонка по номеру заказа при upsert, повторяем как обновление",
			zap.String("orderNumber", orderNumber),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, false, apperrors.Wrap(apperrors.ErrUpdateConflict, err)
}

func (r *OrderRepository) Delete(ctx context.Context, orderNumber string) error {
	if err := normalize.ValidateOrderNumber(orderNumber); err != nil {
		return err
	}
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	sqlText, args, err := r.psql.Delete("orders").
		Where(sq.Eq{"order_number": orderNumber}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, sqlText, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

// Paginate — один проход: фильтр считается до нарезки страницы, поэтому
// total и totalPages всегда точные.
func (r *OrderRepository) Paginate(ctx context.Context, page, pageSize int, filter filtering.OrderFilter, sortField, sortOrder string) ([]entities.Order, types.Pagination, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, types.Pagination{}, err
	}

	countSQL, countArgs, err := filter.ApplyToSelect(r.psql.Select("COUNT(*)").From("orders")).ToSql()
	if err != nil {
		return nil, types.Pagination{}, err
	}
	var total int
	if err := pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, types.Pagination{}, err
	}

	pagination := types.NewPagination(page, pageSize, total)

	builder := filter.ApplyToSelect(r.selectOrders()).
		OrderBy(filtering.SortColumn(sortField)+" "+filtering.SortDirection(sortOrder), "id ASC").
		Limit(uint64(pagination.PageSize)).
		Offset(uint64(pagination.Offset()))
	sqlText, args, err := builder.ToSql()
	if err != nil {
		return nil, types.Pagination{}, err
	}

	orders, err := r.queryOrders(ctx, pool, sqlText, args)
	if err != nil {
		return nil, types.Pagination{}, err
	}
	return orders, pagination, nil
}

func (r *OrderRepository) FindAll(ctx context.Context, filter filtering.OrderFilter, sortField, sortOrder string) ([]entities.Order, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	sqlText, args, err := filter.ApplyToSelect(r.selectOrders()).
		OrderBy(filtering.SortColumn(sortField)+" "+filtering.SortDirection(sortOrder), "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx, pool, sqlText, args)
}

func (r *OrderRepository) queryOrders(ctx context.Context, q querier, sqlText string, args []interface{}) ([]entities.Order, error) {
	rows, err := q.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// ScanAll — потоковый проход по всем записям в порядке суррогатного ключа.
func (r *OrderRepository) ScanAll(ctx context.Context, fn func(order *entities.Order) error) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	sqlText, args, err := r.selectOrders().OrderBy("id ASC").ToSql()
	if err != nil {
		return err
	}
	rows, err := pool.Query(ctx, sqlText, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *OrderRepository) Search(ctx context.Context, keyword string, limit int) ([]entities.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	filter := filtering.OrderFilter{Keyword: keyword}
	sqlText, args, err := filter.ApplyToSelect(r.selectOrders()).
		OrderBy("import_time DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx, pool, sqlText, args)
}

// PurgeOlderThan удаляет записи, рабочая дата которых (scan_time, иначе
// import_time) старше cutoff, и возвращает имена осиротевших видеофайлов.
func (r *OrderRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, int, []string, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return 0, 0, nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT id, video_file FROM orders WHERE COALESCE(scan_time, import_time) < $1`, cutoff)
	if err != nil {
		return 0, 0, nil, err
	}
	defer rows.Close()

	var (
		ids        []int64
		videoFiles []string
	)
	for rows.Next() {
		var (
			id        int64
			videoFile string
		)
		if err := rows.Scan(&id, &videoFile); err != nil {
			return 0, 0, nil, err
		}
		ids = append(ids, id)
		if videoFile != "" {
			videoFiles = append(videoFiles, videoFile)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, err
	}
	if len(ids) == 0 {
		return 0, 0, nil, nil
	}

	tag, err := pool.Exec(ctx, `DELETE FROM orders WHERE id = ANY($1)`, ids)
	if err != nil {
		return len(ids), 0, nil, err
	}
	return len(ids), int(tag.RowsAffected()), videoFiles, nil
}

func (r *OrderRepository) Clear(ctx context.Context) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE orders RESTART IDENTITY`)
	return err
}

// RestoreAll вставляет записи снимка с исходными суррогатными ключами и
// выравнивает счётчик идентификаторов.
func (r *OrderRepository) RestoreAll(ctx context.Context, orders []entities.Order) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, order := range orders {
			values := orderValues(order)
			if order.ID != 0 {
				values["id"] = order.ID
			}
			sqlText, args, buildErr := r.psql.Insert("orders").SetMap(values).ToSql()
			if buildErr != nil {
				return buildErr
			}
			if _, execErr := tx.Exec(ctx, sqlText, args...); execErr != nil {
				return execErr
			}
		}
		_, seqErr := tx.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('orders', 'id'), COALESCE((SELECT MAX(id) FROM orders), 0) + 1, false)`)
		return seqErr
	})
}
