package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/poinku/internal/calculator"
	"github.com/mmynk/poinku/internal/metrics"
	"github.com/mmynk/poinku/internal/models"
)

// Reconciliation compares the cached balance with the journal.
type Reconciliation struct {
	MemberID string

	Cached  int64
	Journal int64

	TotalEarned   int64
	TotalRedeemed int64
	Entries       int

	// MinBalance is the lowest running balance in journal order. Entries
	// written in the same millisecond have no defined order, so it is
	// informational only.
	MinBalance int64

	Consistent bool
}

// Reconcile replays the member's journal and compares it with the cached
// balance. Concurrent writes between the two reads can produce a transient
// mismatch, so the balance is read on both sides of the journal and the
// check is only reported when they agree.
func (l *Ledger) Reconcile(ctx context.Context, memberID string) (*Reconciliation, error) {
	const maxReads = 3

	for i := 0; i < maxReads; i++ {
		before, err := l.store.GetBalance(ctx, memberID)
		if err != nil {
			return nil, err
		}

		entries, err := l.store.ListTransactions(ctx, models.TransactionFilter{MemberID: memberID})
		if err != nil {
			return nil, err
		}

		after, err := l.store.GetBalance(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if before != after {
			continue
		}

		// Journal reads come back newest first.
		replay := make([]calculator.Entry, len(entries))
		for j, e := range entries {
			replay[len(entries)-1-j] = calculator.Entry{Kind: string(e.Kind), Points: e.Points}
		}
		res, err := calculator.Replay(replay)
		if err != nil {
			return nil, fmt.Errorf("failed to replay journal for member %s: %w", memberID, err)
		}

		rec := &Reconciliation{
			MemberID:      memberID,
			Cached:        after,
			Journal:       res.Balance,
			TotalEarned:   res.TotalEarn,
			TotalRedeemed: res.TotalSpent,
			Entries:       len(entries),
			MinBalance:    res.MinBalance,
			Consistent:    res.Balance == after,
		}
		if !rec.Consistent {
			metrics.ReconcileMismatchTotal.Inc()
			l.logger.Error("Balance does not match journal",
				"member_id", memberID,
				"cached", rec.Cached,
				"journal", rec.Journal,
				"min_balance", res.MinBalance,
			)
		}
		return rec, nil
	}

	return nil, fmt.Errorf("balance kept changing during reconciliation: %w", models.ErrConflict)
}
