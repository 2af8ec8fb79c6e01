package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens (or creates) the embedded store at path. Empty path falls back
// to POS_DB_PATH, then to pos.db next to the binary.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = os.Getenv("POS_DB_PATH")
	}
	if path == "" {
		path = "pos.db"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := configure(db); err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("SQLite initialized at: %s", path)
	return db, nil
}

// OpenInMemory opens a throwaway store, used by tests.
func OpenInMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	if err := configure(db); err != nil {
		return nil, err
	}
	return db, nil
}

func configure(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	// One connection: SQLite has a single writer anyway, and the bulk-sync
	// foreign_keys pragma toggle must apply to the same session the
	// transaction runs on.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}

// Migrate creates the mirrored-entity schema and the structural constraints
// on top of it. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Role{},
		&models.Restaurant{},
		&models.Table{},
		&models.DashboardTable{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuthSession{},
		&models.OutboxEntry{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := ApplyConstraints(db); err != nil {
		return err
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
