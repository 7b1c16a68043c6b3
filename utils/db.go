// utils/db.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to postgres when dsn is set, otherwise to a SQLite file at
// sqlitePath (":memory:" for tests).
func OpenDB(dsn, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if strings.TrimSpace(dsn) != "" {
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		Log.Info("🐘 [DB] connected to postgres")
		return db, nil
	}

	if sqlitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(sqlitePath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(sqlitePath), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", sqlitePath, err)
	}
	// every pooled connection to :memory: would see its own empty database
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	Log.WithField("path", sqlitePath).Info("🗄️  [DB] using sqlite")
	return db, nil
}
