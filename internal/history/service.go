// Package history serves read-only views of a wallet's ledger.
package history

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/store"
	"wallet_ledger/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Reader is the read side of the wallet store.
type Reader interface {
	WalletByOwner(ctx context.Context, ownerID uint) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, f store.TransactionFilter, offset, limit int) ([]domain.Transaction, error)
	CountTransactions(ctx context.Context, f store.TransactionFilter) (int64, error)
	FindTransaction(ctx context.Context, walletID, id uint) (*domain.Transaction, error)
	Categories(ctx context.Context, walletID uint) ([]string, error)
	CategorySummary(ctx context.Context, f store.TransactionFilter) ([]store.CategoryTotals, error)
	LedgerTotals(ctx context.Context, walletID uint) (*store.LedgerTotals, error)
}

// Service answers history queries scoped to the caller's wallet.
type Service struct {
	reader Reader
	cache  *utils.Cache
	log    logrus.FieldLogger
}

// NewService builds a history service. cache may be nil.
func NewService(r Reader, cache *utils.Cache, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{reader: r, cache: cache, log: log}
}

// ListQuery selects one page of the caller's ledger.
type ListQuery struct {
	Page     int
	PageSize int
	Category string
	From     *time.Time
	To       *time.Time
}

// ExportQuery selects every matching row of the caller's ledger.
type ExportQuery struct {
	Category string
	From     *time.Time
	To       *time.Time
}

// Page is one page of ledger rows, newest first.
type Page struct {
	Transactions []domain.Transaction `json:"transactions"`
	TotalCount   int64                `json:"total_count"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	TotalPages   int                  `json:"total_pages"`
}

// CategorySummary aggregates one category's rows.
type CategorySummary struct {
	Category         string          `json:"category"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TransactionCount int64           `json:"transaction_count"`
	CreditCount      int64           `json:"credit_count"`
	DebitCount       int64           `json:"debit_count"`
}

// Reconciliation compares a stored balance with the balance implied by the ledger.
type Reconciliation struct {
	UserID        uint            `json:"user_id"`
	WalletID      uint            `json:"wallet_id"`
	Balance       decimal.Decimal `json:"balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	Credits       decimal.Decimal `json:"credits"`
	Debits        decimal.Decimal `json:"debits"`
	Entries       int64           `json:"entries"`
	Balanced      bool            `json:"balanced"`
}

// wallet loads the owner's wallet, mapping store failures to domain errors.
func (s *Service) wallet(ctx context.Context, ownerID uint) (*domain.Wallet, error) {
	w, err := s.reader.WalletByOwner(ctx, ownerID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	return w, nil
}

// ListTransactions returns page q.Page of the caller's rows.
func (s *Service) ListTransactions(ctx context.Context, p domain.Principal, q ListQuery) (*Page, error) {
	if q.Page < 1 || q.PageSize < 1 {
		return nil, domain.ErrInvalidPage
	}
	w, err := s.wallet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	// Every commit moves the wallet's version, so a page read before a
	// commit is never served after it
	key := pageKey(p.UserID, version(w), q)
	var cached Page
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	filter := store.TransactionFilter{WalletID: w.ID, Category: q.Category, From: q.From, To: q.To}
	total, err := s.reader.CountTransactions(ctx, filter)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	rows, err := s.reader.ListTransactions(ctx, filter, (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}

	page := &Page{
		Transactions: rows,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages(total, q.PageSize),
	}
	if err := s.cache.Set(ctx, key, page); err != nil {
		s.log.WithFields(logrus.Fields{"user_id": p.UserID, "error": err.Error()}).Warn("History cache write failed")
	}
	return page, nil
}

// GetTransaction returns one of the caller's rows.
func (s *Service) GetTransaction(ctx context.Context, p domain.Principal, id uint) (*domain.Transaction, error) {
	w, err := s.wallet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	t, err := s.reader.FindTransaction(ctx, w.ID, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	return t, nil
}

// ListCategories returns the caller's distinct categories, ascending.
func (s *Service) ListCategories(ctx context.Context, p domain.Principal) ([]string, error) {
	w, err := s.wallet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	categories, err := s.reader.Categories(ctx, w.ID)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	sort.Strings(categories)
	return categories, nil
}

// SummaryByCategory totals the caller's rows per category, largest total first.
func (s *Service) SummaryByCategory(ctx context.Context, p domain.Principal, from, to *time.Time) ([]CategorySummary, error) {
	w, err := s.wallet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	totals, err := s.reader.CategorySummary(ctx, store.TransactionFilter{WalletID: w.ID, From: from, To: to})
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}

	out := make([]CategorySummary, 0, len(totals))
	for _, t := range totals {
		out = append(out, CategorySummary{
			Category:         t.Category,
			TotalAmount:      t.Total.Round(domain.AmountScale),
			TotalCredit:      t.Credit.Round(domain.AmountScale),
			TotalDebit:       t.Debit.Round(domain.AmountScale),
			TransactionCount: t.Count,
			CreditCount:      t.CreditCount,
			DebitCount:       t.DebitCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalAmount.Cmp(out[j].TotalAmount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// ExportRows returns every matching row, newest first.
func (s *Service) ExportRows(ctx context.Context, p domain.Principal, q ExportQuery) ([]domain.Transaction, error) {
	w, err := s.wallet(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reader.ListTransactions(ctx, store.TransactionFilter{WalletID: w.ID, Category: q.Category, From: q.From, To: q.To}, 0, 0)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoRowsToExport
	}
	return rows, nil
}

// Reconcile recomputes ownerID's balance from the ledger.
func (s *Service) Reconcile(ctx context.Context, ownerID uint) (*Reconciliation, error) {
	w, err := s.wallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	totals, err := s.reader.LedgerTotals(ctx, w.ID)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	credits := totals.Credits.Round(domain.AmountScale)
	debits := totals.Debits.Round(domain.AmountScale)
	ledger := credits.Sub(debits)
	rec := &Reconciliation{
		UserID:        ownerID,
		WalletID:      w.ID,
		Balance:       w.Balance,
		LedgerBalance: ledger,
		Credits:       credits,
		Debits:        debits,
		Entries:       totals.Count,
		Balanced:      ledger.Equal(w.Balance),
	}
	if !rec.Balanced {
		s.log.WithFields(logrus.Fields{
			"user_id":        ownerID,
			"wallet_id":      w.ID,
			"balance":        w.Balance.String(),
			"ledger_balance": ledger.String(),
		}).Error("Wallet balance does not match ledger")
	}
	return rec, nil
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// pageKey identifies one cached page; the wallet version and filters are part of the key.
func pageKey(ownerID uint, version string, q ListQuery) string {
	return utils.HistoryKey(ownerID,
		"v", version,
		"page", strconv.Itoa(q.Page),
		"size", strconv.Itoa(q.PageSize),
		"cat", strings.ToLower(strings.TrimSpace(q.Category)),
		"from", stamp(q.From),
		"to", stamp(q.To),
	)
}

// version identifies the wallet state a page was read against.
func version(w *domain.Wallet) string {
	return strconv.FormatInt(w.UpdatedAt.UTC().UnixMicro(), 10) + "-" + w.Balance.String()
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.UTC().UnixMicro(), 10)
}
