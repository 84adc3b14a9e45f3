package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/model"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

// SQLiteCache keeps cache entries in the registry_kv table under a dedicated
// key prefix. TTL is accepted for interface compatibility and ignored; the
// single-writer model means entries are overwritten on every mutation anyway.
type SQLiteCache struct {
	db *gorm.DB
}

var _ ports.Cache = (*SQLiteCache)(nil)

const cacheKeyPrefix = "cache:"

func NewSQLiteCache(db *gorm.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	storageKey, err := cacheStorageKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.RegistryKV
	if err := c.db.WithContext(ctx).Where("key = ?", storageKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query cache entry")
	}
	return row.Value, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value string, _ time.Duration) error {
	storageKey, err := cacheStorageKey(ctx, key)
	if err != nil {
		return err
	}

	row := model.RegistryKV{
		Key:       storageKey,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert cache entry")
	}
	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	storageKey, err := cacheStorageKey(ctx, key)
	if err != nil {
		return err
	}

	if err := c.db.WithContext(ctx).Where("key = ?", storageKey).
		Delete(&model.RegistryKV{}).Error; err != nil {
		return errs.Wrap(err, "delete cache entry")
	}
	return nil
}

func cacheStorageKey(ctx context.Context, key string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("cache key is required")
	}
	return cacheKeyPrefix + trimmed, nil
}
