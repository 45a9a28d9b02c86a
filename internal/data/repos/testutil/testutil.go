package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/trackdechets/bsd-events/internal/data/db"
	"github.com/trackdechets/bsd-events/internal/domain/events"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated in-memory sqlite database private to the calling test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	if err := db.EnsureIndexes(conn); err != nil {
		tb.Fatalf("indexes: %v", err)
	}
	return conn
}

func Tx(tb testing.TB, conn *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := conn.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

var Epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// Event builds a valid event on stream at Epoch+offset.
func Event(id, stream, typ string, offset time.Duration, data any) events.Event {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return events.Event{
		ID:        id,
		StreamID:  stream,
		Type:      typ,
		Data:      raw,
		Actor:     "user-1",
		CreatedAt: Epoch.Add(offset),
	}
}

// SeedLog inserts evts into the durable log in order.
func SeedLog(tb testing.TB, ctx context.Context, conn *gorm.DB, evts ...events.Event) {
	tb.Helper()
	for _, e := range evts {
		rec := events.NewLogRecord(e)
		if err := conn.WithContext(ctx).Create(&rec).Error; err != nil {
			tb.Fatalf("seed event %s: %v", e.ID, err)
		}
	}
}
