package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"return-unpack-system/internal/entities"
)

type SettingsRepositoryInterface interface {
	Get(ctx context.Context, key string) (interface{}, bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	All(ctx context.Context) ([]entities.SettingsEntry, error)
	Clear(ctx context.Context) error
	RestoreAll(ctx context.Context, entries []entities.SettingsEntry) error
}

type SettingsRepository struct {
	store *Store
}

func NewSettingsRepository(store *Store) SettingsRepositoryInterface {
	return &SettingsRepository{store: store}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (interface{}, bool, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key string, value interface{}) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}

	// Значение лежит в jsonb: строки, числа и вложенные структуры
	// сохраняются без отдельной колонки под каждый тип.
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, payload, time.Now())
	return err
}

func (r *SettingsRepository) All(ctx context.Context) ([]entities.SettingsEntry, error) {
	pool, err := r.store.Pool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]entities.SettingsEntry, 0)
	for rows.Next() {
		var entry entities.SettingsEntry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *SettingsRepository) Clear(ctx context.Context) error {
	pool, err := r.store.Pool()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE settings`)
	return err
}

func (r *SettingsRepository) RestoreAll(ctx context.Context, entries []entities.SettingsEntry) error {
	for _, entry := range entries {
		if err := r.Set(ctx, entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}
