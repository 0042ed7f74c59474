package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"return-unpack-system/internal/entities"
)

type StatsRepositoryInterface interface {
	Get(ctx context.Context, date string) (*entities.DailyStats, error)
	Upsert(ctx context.Context, stats entities.DailyStats) error
	All(ctx context.Context) ([]entities.DailyStats, error)
	Clear(ctx context.Context) error
	RestoreAll(ctx context.Context, stats []entities.DailyStats) error
}

type StatsRepository struct {
	store *Store
}

func NewStatsRepository(store *Store) StatsRepositoryInterface {
	return &StatsRepository{store: store}
}

func (r *StatsRepository) Get(ctx context.Context, date string) (*entities.DailyStats, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	var (
		stats entities.DailyStats
		day   time.Time
	)
	err = pool.QueryRow(ctx,
		`SELECT date, total_orders, processed_orders, pending_orders, damaged_orders, video_orders, updated_at
		 FROM daily_stats WHERE date = $1`, date).
		Scan(&day, &stats.TotalOrders, &stats.ProcessedOrders, &stats.PendingOrders,
			&stats.DamagedOrders, &stats.VideoOrders, &stats.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	stats.Date = day.Format("2006-01-02")
	return &stats, nil
}

func (r *StatsRepository) Upsert(ctx context.Context, stats entities.DailyStats) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO daily_stats (date, total_orders, processed_orders, pending_orders, damaged_orders, video_orders, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (date) DO UPDATE SET
		   total_orders = EXCLUDED.total_orders,
		   processed_orders = EXCLUDED.processed_orders,
		   pending_orders = EXCLUDED.pending_orders,
		   damaged_orders = EXCLUDED.damaged_orders,
		   video_orders = EXCLUDED.video_orders,
		   updated_at = EXCLUDED.updated_at`,
		stats.Date, stats.TotalOrders, stats.ProcessedOrders, stats.PendingOrders,
		stats.DamagedOrders, stats.VideoOrders, stats.UpdatedAt)
	return err
}

func (r *StatsRepository) All(ctx context.Context) ([]entities.DailyStats, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT date, total_orders, processed_orders, pending_orders, damaged_orders, video_orders, updated_at
		 FROM daily_stats ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.DailyStats, 0)
	for rows.Next() {
		var (
			stats entities.DailyStats
			day   time.Time
		)
		if err := rows.Scan(&day, &stats.TotalOrders, &stats.ProcessedOrders, &stats.PendingOrders,
			&stats.DamagedOrders, &stats.VideoOrders, &stats.UpdatedAt); err != nil {
			return nil, err
		}
		stats.Date = day.Format("2006-01-02")
		result = append(result, stats)
	}
	return result, rows.Err()
}

func (r *StatsRepository) Clear(ctx context.Context) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE daily_stats`)
	return err
}

func (r *StatsRepository) RestoreAll(ctx context.Context, stats []entities.DailyStats) error {
	for _, entry := range stats {
		if err := r.Upsert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
