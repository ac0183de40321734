package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var maxPoints = decimal.NewFromInt(math.MaxInt64)

// PointsEarned computes how many points a purchase is worth.
// Based on the rule: points = floor(spent / divisor)
//
// The divisor is the currency amount that buys one point, so with a divisor of
// 25000 a purchase of 130000 earns 5 points and the remaining 5000 is dropped.
func PointsEarned(spent decimal.Decimal, divisor int64) (int64, error) {
	if !spent.IsPositive() {
		return 0, fmt.Errorf("spent amount must be positive, got %s", spent)
	}
	if divisor <= 0 {
		return 0, fmt.Errorf("divisor must be positive, got %d", divisor)
	}

	points := spent.Div(decimal.NewFromInt(divisor)).Floor()
	if points.GreaterThan(maxPoints) {
		return 0, fmt.Errorf("spent amount %s earns more points than a balance can hold", spent)
	}
	return points.IntPart(), nil
}

