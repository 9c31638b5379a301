// Package store persists wallets, users and ledger rows through GORM.
package store

import (
	"context"
	"errors"
	"time"

	"wallet_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: record not found")

// ErrEmailTaken is returned by Register when the email already belongs to a user.
var ErrEmailTaken = errors.New("store: email already registered")

// Unit is one open atomic unit. Every call runs inside the same database
// transaction and is bound to the context given to Atomically.
type Unit interface {
	// LockWallets reads and row-locks the wallets of the given owners in
	// ascending wallet id order. Owners without a wallet are absent from the map.
	LockWallets(ownerIDs ...uint) (map[uint]*domain.Wallet, error)
	WriteBalance(walletID uint, balance decimal.Decimal) error
	AppendTransaction(row *domain.Transaction) error
}

// WalletStore is the transactional store the ledger and history services run against.
type WalletStore interface {
	Atomically(ctx context.Context, fn func(Unit) error) error
	WalletByOwner(ctx context.Context, ownerID uint) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, f TransactionFilter, offset, limit int) ([]domain.Transaction, error)
	CountTransactions(ctx context.Context, f TransactionFilter) (int64, error)
	FindTransaction(ctx context.Context, walletID, id uint) (*domain.Transaction, error)
	Categories(ctx context.Context, walletID uint) ([]string, error)
	CategorySummary(ctx context.Context, f TransactionFilter) ([]CategoryTotals, error)
	LedgerTotals(ctx context.Context, walletID uint) (*LedgerTotals, error)
}

// TransactionFilter narrows a wallet's ledger. Zero fields do not filter.
type TransactionFilter struct {
	WalletID uint
	Category string     // case-insensitive exact match
	From     *time.Time // inclusive
	To       *time.Time // inclusive
}

// CategoryTotals is one aggregated row of a category summary.
type CategoryTotals struct {
	Category    string
	Total       decimal.Decimal
	Credit      decimal.Decimal
	Debit       decimal.Decimal
	Count       int64
	CreditCount int64
	DebitCount  int64
}

// LedgerTotals sums a wallet's ledger by direction.
type LedgerTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Count   int64
}
