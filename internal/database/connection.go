// Package database stores durable error records and the optional sample
// mirror in SQLite.
package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/worklog/worklog/internal/models"
)

type DB struct {
	*gorm.DB
}

// Connect opens the database at dbPath, creating its directory.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	return &DB{db}, nil
}

// Initialize migrates the error_logs and samples tables.
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.ErrorLog{}, &models.SampleRecord{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
