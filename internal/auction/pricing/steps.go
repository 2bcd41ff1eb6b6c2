package pricing

import "github.com/shopspring/decimal"

// DefaultStepCount is used by GenerateDefaultSteps when no count is given.
const DefaultStepCount = 5

// GenerateDefaultSteps spreads stepCount evenly timed, evenly priced drops over
// the auction. The start price is implicit before the first step, so no step is
// emitted at minute 0. A non-positive stepCount falls back to DefaultStepCount.
func GenerateDefaultSteps(startPrice, floorPrice decimal.Decimal, durationMinutes, stepCount int) []DecayStep {
	if stepCount <= 0 {
		stepCount = DefaultStepCount
	}

	n := decimal.NewFromInt(int64(stepCount))
	duration := decimal.NewFromInt(int64(durationMinutes))
	priceRange := startPrice.Sub(floorPrice)

	steps := make([]DecayStep, 0, stepCount)
	for i := 1; i <= stepCount; i++ {
		idx := decimal.NewFromInt(int64(i))
		at := duration.Mul(idx).Div(n).Round(0)
		drop := priceRange.Mul(idx).Div(n)
		steps = append(steps, DecayStep{
			TimeMinutes: int(at.IntPart()),
			Price:       decimal.Max(startPrice.Sub(drop).Round(SOLDecimals), floorPrice),
		})
	}
	return steps
}
