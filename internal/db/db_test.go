package db

import (
	"testing"

	"wallet_ledger/internal/config"
	"wallet_ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.DBConfig {
	return config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	gdb, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	for _, table := range []any{&domain.User{}, &domain.Wallet{}, &domain.Transaction{}} {
		assert.True(t, gdb.Migrator().HasTable(table))
	}
	assert.True(t, gdb.Migrator().HasIndex(&domain.Transaction{}, "idx_transactions_wallet_created"))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNegativeBalanceRejectedByCheckConstraint(t *testing.T) {
	gdb, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	user := domain.User{Email: "a@example.com", FullName: "A", Password: "x"}
	require.NoError(t, gdb.Create(&user).Error)

	wallet := domain.NewWallet(user.ID, "")
	wallet.Balance = decimal.NewFromInt(-1)
	assert.Error(t, gdb.Create(wallet).Error)
}

func TestTransactionsAreAppendOnly(t *testing.T) {
	gdb, err := Open(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	user := domain.User{Email: "b@example.com", FullName: "B", Password: "x"}
	require.NoError(t, gdb.Create(&user).Error)
	wallet := domain.NewWallet(user.ID, "")
	require.NoError(t, gdb.Create(wallet).Error)

	row := domain.Transaction{WalletID: wallet.ID, Type: domain.Credit, Amount: decimal.NewFromInt(5), Description: "Deposit", Category: "Salary"}
	require.NoError(t, gdb.Create(&row).Error)

	err = gdb.Model(&row).Update("description", "changed").Error
	assert.ErrorIs(t, err, domain.ErrImmutableTransaction)
}
