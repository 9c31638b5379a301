package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assigned to wallets created without an explicit currency
const DefaultCurrency = "USD"

// Wallet Model
type Wallet struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                                                              // Primary key
	UserID       uint            `gorm:"uniqueIndex;not null" json:"user_id"`                                               // Foreign key to User
	Balance      decimal.Decimal `gorm:"type:decimal(18,2);not null;check:chk_wallets_balance,balance >= 0" json:"balance"` // Never negative
	Currency     string          `gorm:"size:3;not null" json:"currency"`                                                   // Immutable after creation
	Transactions []Transaction   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                                             // Ledger rows, removed with the wallet
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `gorm:"precision:6" json:"updated_at"` // Bumped by every balance write
}

// NewWallet returns an empty wallet for a freshly registered user.
func NewWallet(userID uint, currency string) *Wallet {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency}
}

// Covers reports whether the wallet can be debited by amount without going negative.
func (w *Wallet) Covers(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
