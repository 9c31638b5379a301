package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wallet_ledger/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements WalletStore on a *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// txOptions picks the isolation level per dialect. SQLite serializes writers
// on its own.
func txOptions(db *gorm.DB) []*sql.TxOptions {
	switch db.Dialector.Name() {
	case "mysql", "postgres":
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead}}
	default:
		return nil
	}
}

// Atomically runs fn inside one database transaction. A non-nil error from
// fn, a panic or a cancelled ctx rolls everything back.
func (s *GormStore) Atomically(ctx context.Context, fn func(Unit) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormUnit{tx: tx})
	}, txOptions(s.db)...)
}

type gormUnit struct {
	tx *gorm.DB
}

func (u *gormUnit) LockWallets(ownerIDs ...uint) (map[uint]*domain.Wallet, error) {
	// Resolve ids first so the row locks are always taken in ascending order.
	var ids []uint
	if err := ownedWalletIDs(u.tx, ownerIDs).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("resolve wallets: %w", err)
	}
	wallets := make(map[uint]*domain.Wallet, len(ids))
	for _, id := range ids {
		var w domain.Wallet
		if err := lockedWallet(u.tx, id).Take(&w).Error; err != nil {
			return nil, fmt.Errorf("lock wallet %d: %w", id, notFound(err))
		}
		wallets[w.UserID] = &w
	}
	return wallets, nil
}

// ownedWalletIDs selects the wallets of ownerIDs in lock order.
func ownedWalletIDs(tx *gorm.DB, ownerIDs []uint) *gorm.DB {
	return tx.Model(&domain.Wallet{}).Where("user_id IN ?", ownerIDs).Order("id ASC")
}

// lockedWallet reads one wallet row under an exclusive row lock. The sqlite
// dialect renders no locking clause.
func lockedWallet(tx *gorm.DB, id uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).Where("id = ?", id)
}

func (u *gormUnit) WriteBalance(walletID uint, balance decimal.Decimal) error {
	res := u.tx.Model(&domain.Wallet{}).Where("id = ?", walletID).Update("balance", balance)
	if res.Error != nil {
		return fmt.Errorf("write balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("write balance: wallet %d: %w", walletID, ErrNotFound)
	}
	return nil
}

func (u *gormUnit) AppendTransaction(row *domain.Transaction) error {
	if err := u.tx.Create(row).Error; err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// WalletByOwner returns the owner's wallet without locking it.
func (s *GormStore) WalletByOwner(ctx context.Context, ownerID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", ownerID).Take(&w).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// filtered applies f to a query over the transactions table.
func (s *GormStore) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{}).Where("wallet_id = ?", f.WalletID)
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("LOWER(category) = LOWER(?)", c)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", f.To.UTC())
	}
	return q
}

// ListTransactions returns the newest rows first. A limit of zero or less returns every match.
func (s *GormStore) ListTransactions(ctx context.Context, f TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	q := s.filtered(ctx, f).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	rows := make([]domain.Transaction, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rows, nil
}

func (s *GormStore) CountTransactions(ctx context.Context, f TransactionFilter) (int64, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return total, nil
}

// FindTransaction returns row id only when it belongs to walletID.
func (s *GormStore) FindTransaction(ctx context.Context, walletID, id uint) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND wallet_id = ?", id, walletID).Take(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *GormStore) Categories(ctx context.Context, walletID uint) ([]string, error) {
	categories := make([]string, 0)
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("wallet_id = ?", walletID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CategorySummary aggregates f's rows per category. Ordering is left to the caller.
func (s *GormStore) CategorySummary(ctx context.Context, f TransactionFilter) ([]CategoryTotals, error) {
	rows := make([]CategoryTotals, 0)
	err := s.filtered(ctx, f).
		Select(
			"category AS category, "+
				"COALESCE(SUM(amount), 0) AS total, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS credit, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS debit, "+
				"COUNT(*) AS count, "+
				"SUM(CASE WHEN type = ? THEN 1 ELSE 0 END) AS credit_count, "+
				"SUM(CASE WHEN type = ? THEN 1 ELSE 0 END) AS debit_count",
			domain.Credit, domain.Debit, domain.Credit, domain.Debit,
		).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize categories: %w", err)
	}
	return rows, nil
}

// LedgerTotals sums every row of walletID by direction.
func (s *GormStore) LedgerTotals(ctx context.Context, walletID uint) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS credits, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS debits, "+
				"COUNT(*) AS count",
			domain.Credit, domain.Debit,
		).
		Where("wallet_id = ?", walletID).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	return &totals, nil
}
