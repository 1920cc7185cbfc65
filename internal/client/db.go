package client

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"club-commerce-backend/internal/model"
)

// InitLedgerDB opens the local sqlite database backing the processed-event
// ledger. Purely instance-local state; everything shared lives in the
// document store.
func InitLedgerDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if err := db.AutoMigrate(&model.ProcessedEvent{}); err != nil {
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}

	return db, nil
}
