package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"return-unpack-system/internal/entities"
)

type ImportHistoryRepositoryInterface interface {
	Append(ctx context.Context, entry entities.ImportHistoryEntry) (*entities.ImportHistoryEntry, error)
	List(ctx context.Context, limit int) ([]entities.ImportHistoryEntry, error)
	All(ctx context.Context) ([]entities.ImportHistoryEntry, error)
	Clear(ctx context.Context) error
	RestoreAll(ctx context.Context, entries []entities.ImportHistoryEntry) error
}

type ImportHistoryRepository struct {
	store *Store
}

func NewImportHistoryRepository(store *Store) ImportHistoryRepositoryInterface {
	return &ImportHistoryRepository{store: store}
}

// Append добавляет запись аудита. Журнал только пополняется, записи в нём
// не редактируются.
func (r *ImportHistoryRepository) Append(ctx context.Context, entry entities.ImportHistoryEntry) (*entities.ImportHistoryEntry, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	entry.CreatedAt = time.Now()
	errors := entry.Errors
	if errors == nil {
		errors = []entities.ImportError{}
	}
	err = pool.QueryRow(ctx,
		`INSERT INTO import_history (file_name, strategy, total, created, updated, skipped, failed, errors, started_at, ended_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		entry.FileName, entry.Strategy, entry.Total, entry.Created, entry.Updated,
		entry.Skipped, entry.Failed, errors, entry.StartedAt, entry.EndedAt, entry.CreatedAt).
		Scan(&entry.ID)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ImportHistoryRepository) List(ctx context.Context, limit int) ([]entities.ImportHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT id, file_name, strategy, total, created, updated, skipped, failed, errors, started_at, ended_at, created_at
		 FROM import_history ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanHistoryRows(rows)
}

func (r *ImportHistoryRepository) All(ctx context.Context) ([]entities.ImportHistoryEntry, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx,
		`SELECT id, file_name, strategy, total, created, updated, skipped, failed, errors, started_at, ended_at, created_at
		 FROM import_history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanHistoryRows(rows)
}

func scanHistoryRows(rows pgx.Rows) ([]entities.ImportHistoryEntry, error) {
	defer rows.Close()

	entries := make([]entities.ImportHistoryEntry, 0)
	for rows.Next() {
		var entry entities.ImportHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.FileName, &entry.Strategy, &entry.Total,
			&entry.Created, &entry.Updated, &entry.Skipped, &entry.Failed, &entry.Errors,
			&entry.StartedAt, &entry.EndedAt, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ImportHistoryRepository) Clear(ctx context.Context) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE import_history RESTART IDENTITY`)
	return err
}

func (r *ImportHistoryRepository) RestoreAll(ctx context.Context, entries []entities.ImportHistoryEntry) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		errors := entry.Errors
		if errors == nil {
			errors = []entities.ImportError{}
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO import_history (id, file_name, strategy, total, created, updated, skipped, failed, errors, started_at, ended_at, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			entry.ID, entry.FileName, entry.Strategy, entry.Total, entry.Created, entry.Updated,
			entry.Skipped, entry.Failed, errors, entry.StartedAt, entry.EndedAt, entry.CreatedAt)
		if err != nil {
			return err
		}
	}
	_, err = pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('import_history', 'id'), COALESCE((SELECT MAX(id) FROM import_history), 0) + 1, false)`)
	return err
}
