package db

import (
	"fmt" // Error wrapping

	"wallet_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate creates or updates the users, wallets and transactions tables
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
