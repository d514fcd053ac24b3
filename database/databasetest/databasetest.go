// Package databasetest provides a migrated in-memory database for tests.
package databasetest

import (
	"fmt"
	"testing"

	"yatube/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New returns a fresh, migrated in-memory SQLite database that is closed when t ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	logger := zap.NewNop()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.OpenSQLite(dsn, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db, logger); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
