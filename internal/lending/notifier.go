// Package lending implements the borrow/return flow over the catalog and
// ledger stores, together with the stock-level notifier. Every operation that
// moves the availability counter runs as one database transaction, so the
// ledger entry, the counter change, and any notification commit or roll back
// together.
package lending

import (
	"context"
	"fmt"

	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// LowStockThreshold is the available-copy count at or below which a book
// counts as running low.
const LowStockThreshold = 2

// EvaluateTransition applies the stock-transition rules to a before/after
// pair of availability counts. At most one rule matches; ok is false when
// the transition is not notable.
//
// The pair must come from the adjustment that triggered the evaluation, not
// from a separate read, otherwise concurrent adjustments can produce spurious
// or missed notifications.
func EvaluateTransition(previous, current int) (kind string, ok bool) {
	switch {
	case current == 0 && previous > 0:
		return model.NotificationEmpty, true
	case current > 0 && previous == 0:
		return model.NotificationRestocked, true
	case current <= LowStockThreshold && previous > LowStockThreshold && current > 0:
		return model.NotificationLowStock, true
	}
	return "", false
}

// TransitionMessage renders the notification message for a stock transition.
func TransitionMessage(kind, title string, current int) string {
	switch kind {
	case model.NotificationEmpty:
		return fmt.Sprintf("%s is now out of stock", title)
	case model.NotificationRestocked:
		return fmt.Sprintf("%s has been restocked (%d copies available)", title, current)
	case model.NotificationLowStock:
		return fmt.Sprintf("%s is running low (%d copies remaining)", title, current)
	}
	return ""
}

// recordTransition evaluates an availability transition and, if a rule
// matches, appends the notification through the same querier (and therefore
// the same transaction) that performed the adjustment.
func recordTransition(ctx context.Context, q store.Querier, bookID int64, title string, previous, current int) error {
	kind, ok := EvaluateTransition(previous, current)
	if !ok {
		return nil
	}
	return store.CreateNotification(ctx, q, bookID, title, kind, TransitionMessage(kind, title, current))
}
