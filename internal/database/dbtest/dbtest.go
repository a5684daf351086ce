// Package dbtest opens a migrated in-memory SQLite database for tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive and
	// serializes writers the way a row lock would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// FailNextUpdate makes the next UPDATE against table return err. Later
// updates run normally.
func FailNextUpdate(t testing.TB, db *gorm.DB, table string, err error) {
	t.Helper()

	var fired atomic.Bool
	name := "dbtest:fail_update_" + table
	cbErr := db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != table || !fired.CompareAndSwap(false, true) {
			return
		}
		tx.AddError(err)
	})
	if cbErr != nil {
		t.Fatalf("register update callback: %v", cbErr)
	}
}
