package ledger

import (
	"context"
	"time"

	"wallet_ledger/internal/domain"
	"wallet_ledger/internal/store"

	"github.com/sirupsen/logrus"
)

// atomically runs fn as one unit, retrying once after a store failure.
// Domain failures are returned untouched; a second store failure surfaces
// as StoreUnavailable.
func (e *Engine) atomically(ctx context.Context, op string, fn func(store.Unit) error) error {
	err := e.store.Atomically(ctx, fn)
	if err == nil || isDomain(err) {
		return err
	}
	if ctx.Err() != nil {
		return domain.ErrStoreUnavailable.Wrap(err)
	}

	e.log.WithFields(logrus.Fields{
		"op":       op,
		"conflict": store.IsConflict(err),
		"error":    err.Error(),
	}).Warn("Ledger unit failed, retrying")

	timer := time.NewTimer(e.retryDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return domain.ErrStoreUnavailable.Wrap(ctx.Err())
	case <-timer.C:
	}

	err = e.store.Atomically(ctx, fn)
	if err == nil || isDomain(err) {
		return err
	}
	if store.IsConflict(err) {
		return domain.ErrStoreUnavailable.Wrap(domain.ErrConcurrencyConflict.Wrap(err))
	}
	return domain.ErrStoreUnavailable.Wrap(err)
}

func isDomain(err error) bool {
	_, ok := domain.AsError(err)
	return ok
}
