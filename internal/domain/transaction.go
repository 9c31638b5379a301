package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryType is the direction of a ledger row. The amount itself is always positive.
type EntryType string

// Ledger directions
const (
	Credit EntryType = "Credit"
	Debit  EntryType = "Debit"
)

// Default categories per operation
const (
	CategoryOther    = "Other"
	CategorySalary   = "Salary"
	CategoryTransfer = "Transfer"
)

// ErrImmutableTransaction is returned when something tries to update a persisted ledger row.
var ErrImmutableTransaction = errors.New("ledger transactions are append-only")

// Transaction Model
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                                              // Monotonic identifier
	WalletID    uint            `gorm:"not null;index:idx_transactions_wallet_created,priority:1" json:"wallet_id"`        // Owning wallet
	Type        EntryType       `gorm:"size:8;not null" json:"type"`                                                       // Credit or Debit
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`                                         // Positive magnitude
	Description string          `gorm:"size:255;not null" json:"description"`                                              // Free text
	Category    string          `gorm:"size:64;not null;index" json:"category"`                                            // Defaults to Other
	CreatedAt   time.Time       `gorm:"not null;precision:6;index:idx_transactions_wallet_created,priority:2" json:"date"` // UTC, set once
}

// BeforeUpdate keeps persisted rows append-only.
func (t *Transaction) BeforeUpdate(*gorm.DB) error {
	return ErrImmutableTransaction
}

// Category returns the trimmed category, or fallback when blank.
func Category(category, fallback string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	if fallback == "" {
		return CategoryOther
	}
	return fallback
}
