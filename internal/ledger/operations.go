package ledger

import (
	"context"
	"strconv"
	"strings"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/store"

	"github.com/sirupsen/logrus"
)

// Default descriptions
const (
	depositDescription  = "Deposit"
	withdrawDescription = "Withdrawal"
)

// Deposit credits the caller's wallet with req.Amount.
func (e *Engine) Deposit(ctx context.Context, p domain.Principal, req DepositRequest) (*Receipt, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	category := domain.Category(req.Category, domain.CategorySalary)
	description := describe(req.Description, depositDescription)

	var receipt Receipt
	var walletID uint
	err := e.atomically(ctx, "deposit", func(u store.Unit) error {
		wallets, err := u.LockWallets(p.UserID)
		if err != nil {
			return err
		}
		w, ok := wallets[p.UserID]
		if !ok {
			return domain.ErrWalletNotFound
		}

		balance := w.Balance.Add(req.Amount)
		if err := u.WriteBalance(w.ID, balance); err != nil {
			return err
		}
		row := &domain.Transaction{
			WalletID:    w.ID,
			Type:        domain.Credit,
			Amount:      req.Amount,
			Description: description,
			Category:    category,
			CreatedAt:   domain.LedgerTime(e.now()),
		}
		if err := u.AppendTransaction(row); err != nil {
			return err
		}
		receipt = Receipt{TransactionID: row.ID, Balance: balance, Currency: w.Currency}
		walletID = w.ID
		return nil
	})
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"user_id": p.UserID,
			"amount":  req.Amount.String(),
			"type":    domain.Credit,
			"error":   err.Error(),
		}).Error("Deposit failed")
		return nil, err
	}
	e.invalidate(ctx, p.UserID)

	e.log.WithFields(logrus.Fields{
		"user_id":        p.UserID,
		"wallet_id":      walletID,
		"amount":         req.Amount.String(),
		"type":           domain.Credit,
		"category":       category,
		"transaction_id": receipt.TransactionID,
	}).Info("Deposit transaction")
	return &receipt, nil
}

// Withdraw debits the caller's wallet. Funds are checked on the locked row.
func (e *Engine) Withdraw(ctx context.Context, p domain.Principal, req WithdrawRequest) (*Receipt, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	category := domain.Category(req.Category, domain.CategoryOther)
	description := describe(req.Description, withdrawDescription)

	var receipt Receipt
	var walletID uint
	err := e.atomically(ctx, "withdraw", func(u store.Unit) error {
		wallets, err := u.LockWallets(p.UserID)
		if err != nil {
			return err
		}
		w, ok := wallets[p.UserID]
		if !ok {
			return domain.ErrWalletNotFound
		}
		if !w.Covers(req.Amount) {
			return domain.ErrInsufficientFunds
		}

		balance := w.Balance.Sub(req.Amount)
		if err := u.WriteBalance(w.ID, balance); err != nil {
			return err
		}
		row := &domain.Transaction{
			WalletID:    w.ID,
			Type:        domain.Debit,
			Amount:      req.Amount,
			Description: description,
			Category:    category,
			CreatedAt:   domain.LedgerTime(e.now()),
		}
		if err := u.AppendTransaction(row); err != nil {
			return err
		}
		receipt = Receipt{TransactionID: row.ID, Balance: balance, Currency: w.Currency}
		walletID = w.ID
		return nil
	})
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"user_id": p.UserID,
			"amount":  req.Amount.String(),
			"type":    domain.Debit,
			"error":   err.Error(),
		}).Warn("Withdrawal failed")
		return nil, err
	}
	e.invalidate(ctx, p.UserID)

	e.log.WithFields(logrus.Fields{
		"user_id":        p.UserID,
		"wallet_id":      walletID,
		"amount":         req.Amount.String(),
		"type":           domain.Debit,
		"category":       category,
		"transaction_id": receipt.TransactionID,
	}).Info("Withdraw transaction")
	return &receipt, nil
}

// Transfer moves req.Amount from the caller to the receiver. Both legs share
// one timestamp and are written in the same unit.
func (e *Engine) Transfer(ctx context.Context, p domain.Principal, req TransferRequest) (*TransferReceipt, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if isSelf(p, req.Receiver) {
		return nil, domain.ErrSelfTransfer
	}
	receiver, err := e.users.Resolve(ctx, req.Receiver)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, domain.ErrReceiverNotFound
		}
		return nil, domain.ErrStoreUnavailable.Wrap(err)
	}
	if receiver.ID == p.UserID {
		return nil, domain.ErrSelfTransfer
	}
	category := domain.Category(req.Category, domain.CategoryTransfer)

	var receipt TransferReceipt
	var fromWalletID, toWalletID uint
	err = e.atomically(ctx, "transfer", func(u store.Unit) error {
		wallets, err := u.LockWallets(p.UserID, receiver.ID)
		if err != nil {
			return err
		}
		from, ok := wallets[p.UserID]
		if !ok {
			return domain.ErrSenderWalletNotFound
		}
		to, ok := wallets[receiver.ID]
		if !ok {
			return domain.ErrReceiverWalletNotFound
		}
		if !from.Covers(req.Amount) {
			return domain.ErrInsufficientFunds
		}

		fromBalance := from.Balance.Sub(req.Amount)
		toBalance := to.Balance.Add(req.Amount)
		// Write in lock order
		for _, w := range ordered(from, to) {
			balance := toBalance
			if w.ID == from.ID {
				balance = fromBalance
			}
			if err := u.WriteBalance(w.ID, balance); err != nil {
				return err
			}
		}

		at := domain.LedgerTime(e.now())
		debit := &domain.Transaction{
			WalletID:    from.ID,
			Type:        domain.Debit,
			Amount:      req.Amount,
			Description: "Transfer to " + receiver.Email,
			Category:    category,
			CreatedAt:   at,
		}
		credit := &domain.Transaction{
			WalletID:    to.ID,
			Type:        domain.Credit,
			Amount:      req.Amount,
			Description: "Transfer from " + p.Email,
			Category:    category,
			CreatedAt:   at,
		}
		if err := u.AppendTransaction(debit); err != nil {
			return err
		}
		if err := u.AppendTransaction(credit); err != nil {
			return err
		}
		fromWalletID, toWalletID = from.ID, to.ID
		receipt = TransferReceipt{
			DebitID:  debit.ID,
			CreditID: credit.ID,
			Balance:  fromBalance,
			Receiver: receiver.Email,
			Amount:   req.Amount,
		}
		return nil
	})
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"from_user_id": p.UserID,
			"to_user_id":   receiver.ID,
			"amount":       req.Amount.String(),
			"error":        err.Error(),
		}).Warn("Transfer failed")
		return nil, err
	}
	e.invalidate(ctx, p.UserID, receiver.ID)

	e.log.WithFields(logrus.Fields{
		"from_user_id":          p.UserID,
		"to_user_id":            receiver.ID,
		"from_wallet_id":        fromWalletID,
		"to_wallet_id":          toWalletID,
		"amount":                req.Amount.String(),
		"category":              category,
		"debit_transaction_id":  receipt.DebitID,
		"credit_transaction_id": receipt.CreditID,
	}).Info("Transfer transaction")
	return &receipt, nil
}

// isSelf catches transfers addressed to the caller before any lookup.
func isSelf(p domain.Principal, receiver string) bool {
	r := strings.TrimSpace(receiver)
	if p.Email != "" && strings.EqualFold(r, p.Email) {
		return true
	}
	return r == strconv.FormatUint(uint64(p.UserID), 10)
}

func describe(description, fallback string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return fallback
}

func ordered(a, b *domain.Wallet) []*domain.Wallet {
	if a.ID < b.ID {
		return []*domain.Wallet{a, b}
	}
	return []*domain.Wallet{b, a}
}
