package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/ledger"
	"wallet_ledger/internal/store"
	"wallet_ledger/internal/testutil"
	"wallet_ledger/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	alice   domain.Principal
	bob     domain.Principal
	aliceWl *domain.Wallet
	bobWl   *domain.Wallet
}

func newFixture(t *testing.T, cache *utils.Cache) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	alice, aliceWallet := testutil.SeedUser(t, gdb, "alice@example.com", "Alice")
	bob, bobWallet := testutil.SeedUser(t, gdb, "bob@example.com", "Bob")
	logger, _ := test.NewNullLogger()
	return &fixture{
		db:      gdb,
		svc:     NewService(store.NewGormStore(gdb), cache, logger),
		alice:   testutil.Principal(alice),
		bob:     testutil.Principal(bob),
		aliceWl: aliceWallet,
		bobWl:   bobWallet,
	}
}

func (f *fixture) add(t *testing.T, w *domain.Wallet, typ domain.EntryType, amount, category string, at time.Time) domain.Transaction {
	t.Helper()
	row := domain.Transaction{WalletID: w.ID, Type: typ, Amount: decimal.RequireFromString(amount), Description: string(typ), Category: category, CreatedAt: at}
	require.NoError(t, f.db.Create(&row).Error)
	return row
}

func TestPaginationMath(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedRows(t, f.db, f.aliceWl, 25, "Salary", t0)

	tests := []struct {
		page, size int
		wantRows   int
		wantPages  int
	}{
		{page: 1, size: 10, wantRows: 10, wantPages: 3},
		{page: 3, size: 10, wantRows: 5, wantPages: 3},
		{page: 4, size: 10, wantRows: 0, wantPages: 3},
		{page: 1, size: 25, wantRows: 25, wantPages: 1},
		{page: 2, size: 7, wantRows: 7, wantPages: 4},
	}

	for _, tt := range tests {
		got, err := f.svc.ListTransactions(context.Background(), f.alice, ListQuery{Page: tt.page, PageSize: tt.size})
		require.NoError(t, err)
		assert.Len(t, got.Transactions, tt.wantRows, "page %d size %d", tt.page, tt.size)
		assert.Equal(t, tt.wantPages, got.TotalPages)
		assert.Equal(t, int64(25), got.TotalCount)
		assert.Equal(t, tt.page, got.Page)
		assert.Equal(t, tt.size, got.PageSize)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	f := newFixture(t, nil)
	rows := testutil.SeedRows(t, f.db, f.aliceWl, 12, "Salary", t0)

	first, err := f.svc.ListTransactions(context.Background(), f.alice, ListQuery{Page: 1, PageSize: 5})
	require.NoError(t, err)
	second, err := f.svc.ListTransactions(context.Background(), f.alice, ListQuery{Page: 2, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, rows[11].ID, first.Transactions[0].ID)
	assert.Equal(t, rows[7].ID, first.Transactions[4].ID)
	assert.Equal(t, rows[6].ID, second.Transactions[0].ID)
}

func TestListTransactionsRejectsBadPage(t *testing.T) {
	f := newFixture(t, nil)

	for _, q := range []ListQuery{{Page: 0, PageSize: 10}, {Page: 1, PageSize: 0}, {Page: -1, PageSize: -1}} {
		_, err := f.svc.ListTransactions(context.Background(), f.alice, q)
		assert.ErrorIs(t, err, domain.ErrInvalidPage)
	}
}

func TestListTransactionsReplayIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedRows(t, f.db, f.aliceWl, 9, "Food", t0)
	q := ListQuery{Page: 2, PageSize: 4, Category: "food"}

	a, err := f.svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	b, err := f.svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestListTransactionsFilters(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, f.aliceWl, domain.Credit, "10", "Salary", t0)
	food := f.add(t, f.aliceWl, domain.Debit, "3", "Food", t0.Add(24*time.Hour))
	f.add(t, f.aliceWl, domain.Debit, "4", "food", t0.Add(48*time.Hour))
	ctx := context.Background()

	byCategory, err := f.svc.ListTransactions(ctx, f.alice, ListQuery{Page: 1, PageSize: 10, Category: "FOOD"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byCategory.TotalCount)

	from := t0.Add(time.Hour)
	to := t0.Add(25 * time.Hour)
	byDate, err := f.svc.ListTransactions(ctx, f.alice, ListQuery{Page: 1, PageSize: 10, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, byDate.Transactions, 1)
	assert.Equal(t, food.ID, byDate.Transactions[0].ID)
}

func TestListTransactionsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	f := newFixture(t, utils.NewCache(rdb, time.Minute))
	testutil.SeedRows(t, f.db, f.aliceWl, 3, "Food", t0)
	q := ListQuery{Page: 1, PageSize: 10}

	first, err := f.svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	require.Len(t, first.Transactions, 3)
	assert.Len(t, mr.Keys(), 1)

	// A row written behind the engine's back leaves the wallet version alone.
	f.add(t, f.aliceWl, domain.Debit, "1", "Food", t0.Add(time.Hour))
	cached, err := f.svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cached.TotalCount)

	require.NoError(t, utils.NewCache(rdb, time.Minute).InvalidateOwners(context.Background(), f.alice.UserID))
	fresh, err := f.svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.TotalCount)
}

// pausingReader holds the first ListTransactions call after its rows are read.
type pausingReader struct {
	*store.GormStore
	read             chan struct{}
	release          chan struct{}
	once             sync.Once
}

func (r *pausingReader) ListTransactions(ctx context.Context, f store.TransactionFilter, offset, limit int) ([]domain.Transaction, error) {
	rows, err := r.GormStore.ListTransactions(ctx, f, offset, limit)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return rows, err
}

func TestPageReadDuringCommitIsNotServedAfterIt(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := utils.NewCache(rdb, time.Minute)
	f := newFixture(t, cache)
	gs := store.NewGormStore(f.db)
	logger, _ := test.NewNullLogger()
	reader := &pausingReader{GormStore: gs, read: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(reader, cache, logger)
	engine := ledger.NewEngine(gs, store.NewUserStore(f.db), ledger.WithCache(cache), ledger.WithLogger(logger))
	q := ListQuery{Page: 1, PageSize: 10}

	_, err := engine.Deposit(context.Background(), f.alice, ledger.DepositRequest{Amount: decimal.NewFromInt(5), Category: "Salary"})
	require.NoError(t, err)

	done := make(chan *Page)
	go func() {
		page, err := svc.ListTransactions(context.Background(), f.alice, q)
		assert.NoError(t, err)
		done <- page
	}()
	<-reader.read
	_, err = engine.Deposit(context.Background(), f.alice, ledger.DepositRequest{Amount: decimal.NewFromInt(7), Category: "Salary"})
	require.NoError(t, err)
	close(reader.release)

	stale := <-done
	require.NotNil(t, stale)
	assert.Equal(t, int64(1), stale.TotalCount)

	fresh, err := svc.ListTransactions(context.Background(), f.alice, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.TotalCount)
	assert.Equal(t, "7", fresh.Transactions[0].Amount.String())
}

func TestGetTransactionScopedToCaller(t *testing.T) {
	f := newFixture(t, nil)
	row := f.add(t, f.aliceWl, domain.Credit, "10", "Salary", t0)
	ctx := context.Background()

	got, err := f.svc.GetTransaction(ctx, f.alice, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, got.ID)

	_, err = f.svc.GetTransaction(ctx, f.bob, row.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	_, err = f.svc.GetTransaction(ctx, f.alice, row.ID+100)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestListCategories(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, f.aliceWl, domain.Credit, "10", "Salary", t0)
	f.add(t, f.aliceWl, domain.Debit, "1", "Food", t0)
	f.add(t, f.aliceWl, domain.Debit, "1", "Food", t0)
	f.add(t, f.bobWl, domain.Credit, "1", "Gift", t0)

	got, err := f.svc.ListCategories(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "Salary"}, got)

	bobs, err := f.svc.ListCategories(context.Background(), f.bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gift"}, bobs)
}

func TestSummaryByCategory(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, f.aliceWl, domain.Credit, "100", "Salary", t0)
	f.add(t, f.aliceWl, domain.Debit, "20.25", "Food", t0.Add(time.Hour))
	f.add(t, f.aliceWl, domain.Credit, "5", "Food", t0.Add(2*time.Hour))
	f.add(t, f.aliceWl, domain.Debit, "25.25", "Rent", t0.Add(3*time.Hour))

	got, err := f.svc.SummaryByCategory(context.Background(), f.alice, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Salary", got[0].Category)
	// Food and Rent tie on 25.25 and sort by name.
	assert.Equal(t, "Food", got[1].Category)
	assert.Equal(t, "Rent", got[2].Category)

	food := got[1]
	assert.True(t, food.TotalAmount.Equal(decimal.RequireFromString("25.25")))
	assert.True(t, food.TotalCredit.Equal(decimal.NewFromInt(5)))
	assert.True(t, food.TotalDebit.Equal(decimal.RequireFromString("20.25")))
	assert.Equal(t, int64(2), food.TransactionCount)
	assert.Equal(t, int64(1), food.CreditCount)
	assert.Equal(t, int64(1), food.DebitCount)

	from := t0.Add(time.Hour)
	to := t0.Add(2 * time.Hour)
	bounded, err := f.svc.SummaryByCategory(context.Background(), f.alice, &from, &to)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, int64(2), bounded[0].TransactionCount)
}

func TestExportRows(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.ExportRows(ctx, f.alice, ExportQuery{})
	assert.ErrorIs(t, err, domain.ErrNoRowsToExport)

	testutil.SeedRows(t, f.db, f.aliceWl, 30, "Salary", t0)
	f.add(t, f.aliceWl, domain.Debit, "1", "Food", t0.Add(time.Hour))

	all, err := f.svc.ExportRows(ctx, f.alice, ExportQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 31)
	assert.Equal(t, "Food", all[0].Category)

	_, err = f.svc.ExportRows(ctx, f.alice, ExportQuery{Category: "Gift"})
	assert.ErrorIs(t, err, domain.ErrNoRowsToExport)
}

func TestMissingWallet(t *testing.T) {
	f := newFixture(t, nil)
	ghost := domain.Principal{UserID: 999}
	ctx := context.Background()

	_, err := f.svc.ListTransactions(ctx, ghost, ListQuery{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = f.svc.GetTransaction(ctx, ghost, 1)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = f.svc.ListCategories(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = f.svc.SummaryByCategory(ctx, ghost, nil, nil)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = f.svc.ExportRows(ctx, ghost, ExportQuery{})
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	_, err = f.svc.Reconcile(ctx, ghost.UserID)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestReconcile(t *testing.T) {
	f := newFixture(t, nil)
	testutil.SeedRows(t, f.db, f.aliceWl, 4, "Salary", t0) // credits 1+2+3+4
	f.add(t, f.aliceWl, domain.Debit, "2.5", "Food", t0.Add(time.Hour))
	require.NoError(t, f.db.Model(&domain.Wallet{}).Where("id = ?", f.aliceWl.ID).
		Update("balance", decimal.RequireFromString("7.5")).Error)
	ctx := context.Background()

	rec, err := f.svc.Reconcile(ctx, f.alice.UserID)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.True(t, rec.Credits.Equal(decimal.NewFromInt(10)))
	assert.True(t, rec.Debits.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, int64(5), rec.Entries)

	require.NoError(t, f.db.Model(&domain.Wallet{}).Where("id = ?", f.aliceWl.ID).
		Update("balance", decimal.NewFromInt(8)).Error)
	rec, err = f.svc.Reconcile(ctx, f.alice.UserID)
	require.NoError(t, err)
	assert.False(t, rec.Balanced)
	assert.True(t, rec.LedgerBalance.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, rec.Balance.Equal(decimal.NewFromInt(8)))
}
