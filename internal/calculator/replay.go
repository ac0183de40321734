package calculator

import "fmt"

// Entry is the minimal information needed to replay a journal entry.
type Entry struct {
	Kind   string // "earning" or "redeem"
	Points int64
}

// ReplayResult describes the balance a journal implies.
type ReplayResult struct {
	Balance    int64
	TotalEarn  int64
	TotalSpent int64
	// MinBalance is the lowest running balance seen while replaying.
	// A negative value means the journal order would have overdrawn the member.
	MinBalance int64
}

// Replay folds journal entries, oldest first, into the balance they imply.
//
// Algorithm:
// - earning entries add Points, redeem entries subtract Points
// - the running minimum is tracked so overdrafts are visible even if the
//   final balance is non-negative
func Replay(entries []Entry) (ReplayResult, error) {
	var res ReplayResult
	for i, e := range entries {
		if e.Points < 0 {
			return ReplayResult{}, fmt.Errorf("entry %d: points must not be negative, got %d", i, e.Points)
		}
		switch e.Kind {
		case "earning":
			res.Balance += e.Points
			res.TotalEarn += e.Points
		case "redeem":
			res.Balance -= e.Points
			res.TotalSpent += e.Points
		default:
			return ReplayResult{}, fmt.Errorf("entry %d: unknown kind %q", i, e.Kind)
		}
		if res.Balance < res.MinBalance {
			res.MinBalance = res.Balance
		}
	}
	return res, nil
}
