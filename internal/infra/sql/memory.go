package sql

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewMemoryORM opens a named in-memory sqlite database. The name keeps the
// shared cache isolated between callers, so each test suite gets its own
// database while gorm's connection pool still sees a single store.
func NewMemoryORM(name string) (ORM, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite in-memory db: %w", err)
	}

	return &DB{DB: gormDB, autoMigrationEnabled: true}, nil
}
