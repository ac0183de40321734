package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPointsEarned(t *testing.T) {
	tests := []struct {
		name    string
		spent   string
		divisor int64
		want    int64
		wantErr bool
	}{
		{name: "floor drops the remainder", spent: "130000", divisor: 25000, want: 5},
		{name: "exact multiple", spent: "50000", divisor: 25000, want: 2},
		{name: "below one point", spent: "24999", divisor: 25000, want: 0},
		{name: "fractional currency", spent: "25000.75", divisor: 25000, want: 1},
		{name: "divisor of one", spent: "17", divisor: 1, want: 17},
		{name: "zero spent should error", spent: "0", divisor: 25000, wantErr: true},
		{name: "negative spent should error", spent: "-100", divisor: 25000, wantErr: true},
		{name: "zero divisor should error", spent: "100", divisor: 0, wantErr: true},
		{name: "largest representable balance", spent: "9223372036854775807", divisor: 1, want: 9223372036854775807},
		{name: "one past int64 should error", spent: "9223372036854775808", divisor: 1, wantErr: true},
		{name: "wrap-around amount should error", spent: "18446744073709551621", divisor: 1, wantErr: true},
		{name: "huge spend with large divisor", spent: "18446744073709551621", divisor: 25000, want: 737869762948382},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointsEarned(decimal.RequireFromString(tt.spent), tt.divisor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PointsEarned() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("PointsEarned(%s, %d) = %d, want %d", tt.spent, tt.divisor, got, tt.want)
			}
		})
	}
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name         string
		entries      []Entry
		wantErr      bool
		validateFunc func(t *testing.T, res ReplayResult)
	}{
		{
			name: "earn then redeem",
			entries: []Entry{
				{Kind: "earning", Points: 100},
				{Kind: "redeem", Points: 60},
				{Kind: "earning", Points: 5},
			},
			validateFunc: func(t *testing.T, res ReplayResult) {
				if res.Balance != 45 {
					t.Errorf("Balance = %d, want 45", res.Balance)
				}
				if res.TotalEarn != 105 || res.TotalSpent != 60 {
					t.Errorf("totals = %d/%d, want 105/60", res.TotalEarn, res.TotalSpent)
				}
				if res.MinBalance != 0 {
					t.Errorf("MinBalance = %d, want 0", res.MinBalance)
				}
			},
		},
		{
			name: "overdraft is reported",
			entries: []Entry{
				{Kind: "redeem", Points: 10},
				{Kind: "earning", Points: 20},
			},
			validateFunc: func(t *testing.T, res ReplayResult) {
				if res.Balance != 10 {
					t.Errorf("Balance = %d, want 10", res.Balance)
				}
				if res.MinBalance != -10 {
					t.Errorf("MinBalance = %d, want -10", res.MinBalance)
				}
			},
		},
		{
			name: "empty journal",
			validateFunc: func(t *testing.T, res ReplayResult) {
				if res.Balance != 0 {
					t.Errorf("Balance = %d, want 0", res.Balance)
				}
			},
		},
		{
			name:    "unknown kind should error",
			entries: []Entry{{Kind: "refund", Points: 1}},
			wantErr: true,
		},
		{
			name:    "negative points should error",
			entries: []Entry{{Kind: "earning", Points: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Replay(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Replay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, res)
			}
		})
	}
}
