package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"InspectAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Cache — серверный кэш страниц поверх Redis. Ключ собирается из
// {таблица, маршрут, параметры, пагинация}, инвалидация — по имени таблицы
// после любой записи.
type Cache struct {
	rdb    *redis.Client
	policy *Policy
}

func New(rdb *redis.Client, policy *Policy) *Cache {
	return &Cache{rdb: rdb, policy: policy}
}

// Key детерминированно сворачивает параметры запроса в ключ вида
// page:<table>:<route>:<digest>. Префикс по таблице делает возможной
// инвалидацию всей таблицы одним SCAN-ом.
func (c *Cache) Key(table, route string, params, paging any) string {
	payload, err := json.Marshal([]any{params, paging})
	if err != nil {
		payload = []byte(fmt.Sprintf("%v|%v", params, paging))
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("page:%s:%s:%s", table, route, hex.EncodeToString(sum[:8]))
}

// Get кладёт найденное значение в dest; (false, nil) — промах.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// битое значение в кэше хуже промаха: выкидываем и идём в базу
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// Set сохраняет значение со сроком жизни по политике таблицы.
// Нулевой TTL выключает кэширование таблицы целиком.
func (c *Cache) Set(ctx context.Context, key, table string, value any) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	ttl := c.policy.TTL(table)
	if ttl == 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// InvalidateTable удаляет все страницы таблицы. Ошибки здесь не фатальны
// для запроса — журналируем и продолжаем.
func (c *Cache) InvalidateTable(ctx context.Context, table string) {
	if c == nil || c.rdb == nil {
		return
	}
	var cursor uint64
	pattern := "page:" + table + ":*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			logger.Warn("cache_invalidate_failed", map[string]any{
				"table": table,
				"error": err.Error(),
			})
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				logger.Warn("cache_invalidate_failed", map[string]any{
					"table": table,
					"error": err.Error(),
				})
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
