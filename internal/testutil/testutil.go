// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"testing"
	"time"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/db"
	"wallet_ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// SeedUser inserts a user with an empty wallet and returns both.
func SeedUser(t testing.TB, gdb *gorm.DB, email, name string) (*domain.User, *domain.Wallet) {
	t.Helper()
	user := &domain.User{Email: email, FullName: name, Password: "hash", Role: domain.RoleUser}
	require.NoError(t, gdb.Omit("Wallet").Create(user).Error)
	wallet := domain.NewWallet(user.ID, "")
	require.NoError(t, gdb.Create(wallet).Error)
	return user, wallet
}

// SeedRows appends n rows to wallet, one second apart starting at start, and
// credits wallet so its balance matches the ledger.
func SeedRows(t testing.TB, gdb *gorm.DB, wallet *domain.Wallet, n int, category string, start time.Time) []domain.Transaction {
	t.Helper()
	rows := make([]domain.Transaction, n)
	total := decimal.Zero
	for i := range rows {
		rows[i] = domain.Transaction{
			WalletID:    wallet.ID,
			Type:        domain.Credit,
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Description: "Deposit",
			Category:    category,
			CreatedAt:   domain.LedgerTime(start.Add(time.Duration(i) * time.Second)),
		}
		total = total.Add(rows[i].Amount)
	}
	require.NoError(t, gdb.Create(&rows).Error)
	wallet.Balance = wallet.Balance.Add(total)
	require.NoError(t, gdb.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error)
	return rows
}

// Principal returns the principal for user.
func Principal(user *domain.User) domain.Principal {
	return domain.PrincipalOf(user)
}
