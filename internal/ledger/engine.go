// Package ledger moves money between wallets. Every operation runs as one
// atomic unit against the store: lock the wallet rows, re-check funds, write
// the balances, append the ledger rows, commit.
package ledger

import (
	"context"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/store"
	"wallet_ledger/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is the transactional storage the engine writes through.
type Store interface {
	Atomically(ctx context.Context, fn func(store.Unit) error) error
	WalletByOwner(ctx context.Context, ownerID uint) (*domain.Wallet, error)
}

// PrincipalResolver finds transfer receivers by email or numeric user id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, emailOrID string) (*domain.User, error)
}

// Engine is the only writer of balances and ledger rows.
type Engine struct {
	store      Store
	users      PrincipalResolver
	cache      *utils.Cache
	log        logrus.FieldLogger
	now        func() time.Time
	retryDelay time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to stamp ledger rows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRetryDelay sets the pause before a conflicted unit is retried.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

// WithCache enables post-commit invalidation of cached history and admin pages.
func WithCache(c *utils.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the logger; defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine over s, resolving receivers through users.
func NewEngine(s Store, users PrincipalResolver, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		users:      users,
		log:        logrus.StandardLogger(),
		now:        time.Now,
		retryDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DepositRequest credits the caller's wallet.
type DepositRequest struct {
	Amount      decimal.Decimal
	Category    string
	Description string
}

// WithdrawRequest debits the caller's wallet.
type WithdrawRequest struct {
	Amount      decimal.Decimal
	Category    string
	Description string
}

// TransferRequest moves Amount from the caller to Receiver, an email or numeric
// user id. Leg descriptions are generated from both emails.
type TransferRequest struct {
	Receiver string
	Amount   decimal.Decimal
	Category string
}

// Receipt is the outcome of a deposit or withdrawal.
type Receipt struct {
	TransactionID uint            `json:"transaction_id"`
	Balance       decimal.Decimal `json:"new_balance"`
	Currency      string          `json:"currency"`
}

// TransferReceipt is the outcome of a transfer, seen from the sender.
type TransferReceipt struct {
	DebitID  uint            `json:"debit_transaction_id"`
	CreditID uint            `json:"credit_transaction_id"`
	Balance  decimal.Decimal `json:"new_balance"`
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
}

// BalanceView is the caller's current balance.
type BalanceView struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// Balance returns the caller's balance. It is always read from the store:
// a cached copy could be written back after a concurrent commit.
func (e *Engine) Balance(ctx context.Context, p domain.Principal) (*BalanceView, error) {
	w, err := e.store.WalletByOwner(ctx, p.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	return &BalanceView{Balance: w.Balance, Currency: w.Currency}, nil
}

// invalidate drops cached views of every owner touched by a committed unit.
func (e *Engine) invalidate(ctx context.Context, ownerIDs ...uint) {
	if err := e.cache.InvalidateOwners(ctx, ownerIDs...); err != nil {
		e.log.WithFields(logrus.Fields{"owners": ownerIDs, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}
