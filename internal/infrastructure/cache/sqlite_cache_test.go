package cache

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/thiagodalladea/bebida-segura/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.RegistryKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestCacheRoundTrip(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "lot_state:1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() found before Set")
	}

	if err := c.Set(ctx, "lot_state:1", "CREATED", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(ctx, "lot_state:1", "BLOCKED", 0); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	value, found, err := c.Get(ctx, "lot_state:1")
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v", found, err)
	}
	if value != "BLOCKED" {
		t.Fatalf("Get() = %q", value)
	}

	if err := c.Delete(ctx, "lot_state:1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, found, err = c.Get(ctx, "lot_state:1")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() found after delete")
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	c := setupCache(t)

	if err := c.Set(context.Background(), "  ", "x", 0); err == nil {
		t.Fatalf("Set() with empty key succeeded")
	}
}
