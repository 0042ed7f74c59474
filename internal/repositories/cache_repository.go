package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface — кеш и короткоживущие замки. SetNX нужен
// замку импорта: одновременно может идти только один импорт.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}
