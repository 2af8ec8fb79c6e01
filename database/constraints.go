package database

import (
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

// Constraints AutoMigrate cannot express. The partial unique index is what
// makes "one OPEN order per table" structural instead of a read-side
// convention.
var constraintStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_per_table
		ON orders(table_id) WHERE status = 'OPEN'`,
	`CREATE INDEX IF NOT EXISTS idx_orders_table_opened
		ON orders(table_id, opened_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_pending
		ON outbox_entries(status, created_at)`,
}

func ApplyConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error applying constraint: %v\nStatement: %s", err, stmt)
			return err
		}
	}
	return nil
}
