package domain

import "errors"

// ErrorKind identifies a class of ledger failure
type ErrorKind string

// Failure kinds surfaced to callers
const (
	KindInvalidAmount          ErrorKind = "INVALID_AMOUNT"
	KindInvalidPage            ErrorKind = "INVALID_PAGE"
	KindWalletNotFound         ErrorKind = "WALLET_NOT_FOUND"
	KindSenderWalletNotFound   ErrorKind = "SENDER_WALLET_NOT_FOUND"
	KindReceiverWalletNotFound ErrorKind = "RECEIVER_WALLET_NOT_FOUND"
	KindInsufficientFunds      ErrorKind = "INSUFFICIENT_FUNDS"
	KindReceiverNotFound       ErrorKind = "RECEIVER_NOT_FOUND"
	KindSelfTransfer           ErrorKind = "SELF_TRANSFER"
	KindTransactionNotFound    ErrorKind = "TRANSACTION_NOT_FOUND"
	KindNoRowsToExport         ErrorKind = "NO_ROWS_TO_EXPORT"
	KindStoreUnavailable       ErrorKind = "STORE_UNAVAILABLE"
	KindConcurrencyConflict    ErrorKind = "CONCURRENCY_CONFLICT"
)

// Error is a typed ledger failure. Message is short and user facing; Detail
// carries diagnostic text from the underlying cause and is never shown as the
// primary message.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInsufficientFunds)
// holds for wrapped copies too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Wrap returns a copy of e carrying err as its cause and diagnostic detail.
func (e *Error) Wrap(err error) *Error {
	out := *e
	out.Err = err
	if err != nil {
		out.Detail = err.Error()
	}
	return &out
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	out := *e
	out.Message = msg
	return &out
}

// Sentinel failures, one per kind
var (
	ErrInvalidAmount          = &Error{Kind: KindInvalidAmount, Message: "Amount must be positive"}
	ErrInvalidPage            = &Error{Kind: KindInvalidPage, Message: "Page and page size must be at least 1"}
	ErrWalletNotFound         = &Error{Kind: KindWalletNotFound, Message: "Wallet not found"}
	ErrSenderWalletNotFound   = &Error{Kind: KindSenderWalletNotFound, Message: "Sender wallet not found"}
	ErrReceiverWalletNotFound = &Error{Kind: KindReceiverWalletNotFound, Message: "Receiver wallet not found"}
	ErrInsufficientFunds      = &Error{Kind: KindInsufficientFunds, Message: "Insufficient funds"}
	ErrReceiverNotFound       = &Error{Kind: KindReceiverNotFound, Message: "Receiver not found"}
	ErrSelfTransfer           = &Error{Kind: KindSelfTransfer, Message: "Cannot transfer to yourself"}
	ErrTransactionNotFound    = &Error{Kind: KindTransactionNotFound, Message: "Transaction not found"}
	ErrNoRowsToExport         = &Error{Kind: KindNoRowsToExport, Message: "No transactions found to export"}
	ErrStoreUnavailable       = &Error{Kind: KindStoreUnavailable, Message: "Service temporarily unavailable"}
	ErrConcurrencyConflict    = &Error{Kind: KindConcurrencyConflict, Message: "Concurrent update conflict"}
)

// AsError extracts the outermost *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
