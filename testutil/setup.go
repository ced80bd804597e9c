package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/gameshelf/server/cache"
	"github.com/gameshelf/server/config"
	"github.com/gameshelf/server/model"
	"github.com/gameshelf/server/storage"
	"github.com/gameshelf/server/storage/gormstore"
	"github.com/gameshelf/server/storage/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// SetupTestDB creates a per-test in-memory SQLite database and runs
// AutoMigrate. Each call gets its own named database so parallel tests
// do not share state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlitedriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "SetupTestDB: open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestStore returns a SQLite-backed Store for tests that exercise
// the persistent path.
func SetupTestStore(t *testing.T) storage.Store {
	t.Helper()
	return gormstore.New(SetupTestDB(t))
}

// SetupTestFacade wires a SQLite primary and an in-memory fallback the
// way main does, using a no-op logger.
func SetupTestFacade(t *testing.T) *storage.Facade {
	t.Helper()
	return storage.NewFacade(SetupTestStore(t), memstore.New(), zap.NewNop())
}

// SetupTestCache creates a LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(config.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}
