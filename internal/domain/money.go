package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits a stored amount may carry.
const AmountScale = 2

// ValidateAmount rejects zero, negative and over-precise amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrInvalidAmount.WithMessage("Amount must have at most 2 decimal places")
	}
	return nil
}

// LedgerTime normalises a clock reading to the precision every supported store keeps.
func LedgerTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
