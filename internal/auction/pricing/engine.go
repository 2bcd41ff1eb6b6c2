package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	fifty       = decimal.NewFromInt(50)
	nanosPerMin = decimal.NewFromInt(int64(time.Minute))
)

// ElapsedMinutes returns the fractional minutes between start and now.
// Negative when now is before start.
func ElapsedMinutes(startsAt, now time.Time) decimal.Decimal {
	return decimal.NewFromInt(now.Sub(startsAt).Nanoseconds()).Div(nanosPerMin)
}

// CurrentPrice returns the auction price at instant now.
func CurrentPrice(a AuctionPricing, now time.Time) decimal.Decimal {
	if now.Before(a.StartsAt) {
		return a.StartPrice
	}

	elapsed := ElapsedMinutes(a.StartsAt, now)
	if a.DurationMinutes <= 0 || elapsed.GreaterThanOrEqual(decimal.NewFromInt(int64(a.DurationMinutes))) {
		return a.FloorPrice
	}

	price := a.curve().priceAt(elapsed, a)
	return clamp(price.Round(SOLDecimals), a.FloorPrice, a.StartPrice)
}

// Temperature maps the current price onto [0,100]: 0 at the floor, 100 at the
// start price. A zero-range auction is always 50.
func Temperature(a AuctionPricing, now time.Time) decimal.Decimal {
	priceRange := a.StartPrice.Sub(a.FloorPrice)
	if priceRange.IsZero() {
		return fifty
	}
	current := CurrentPrice(a, now)
	temp := current.Sub(a.FloorPrice).Mul(hundred).Div(priceRange)
	return clamp(temp, decimal.Zero, hundred)
}

func (LinearCurve) priceAt(elapsed decimal.Decimal, a AuctionPricing) decimal.Decimal {
	return linearPrice(elapsed, a)
}

func (c SteppedCurve) priceAt(elapsed decimal.Decimal, a AuctionPricing) decimal.Decimal {
	if len(c.Steps) == 0 {
		return linearPrice(elapsed, a)
	}
	price := a.StartPrice
	for _, step := range sortedSteps(c.Steps) {
		if decimal.NewFromInt(int64(step.TimeMinutes)).GreaterThan(elapsed) {
			break
		}
		price = step.Price
	}
	return price
}

func (c CustomCurve) priceAt(elapsed decimal.Decimal, a AuctionPricing) decimal.Decimal {
	if len(c.Steps) == 0 {
		return linearPrice(elapsed, a)
	}

	steps := sortedSteps(c.Steps)
	if steps[0].TimeMinutes > 0 {
		steps = append([]DecayStep{{TimeMinutes: 0, Price: a.StartPrice}}, steps...)
	}
	if steps[len(steps)-1].TimeMinutes < a.DurationMinutes {
		steps = append(steps, DecayStep{TimeMinutes: a.DurationMinutes, Price: a.FloorPrice})
	}

	// Zero-width segments never bracket elapsed, so the divisor is always positive.
	for i := 0; i < len(steps)-1; i++ {
		cur, next := steps[i], steps[i+1]
		curTime := decimal.NewFromInt(int64(cur.TimeMinutes))
		nextTime := decimal.NewFromInt(int64(next.TimeMinutes))
		if elapsed.LessThan(curTime) || elapsed.GreaterThanOrEqual(nextTime) {
			continue
		}
		progress := elapsed.Sub(curTime).Div(nextTime.Sub(curTime))
		return cur.Price.Sub(cur.Price.Sub(next.Price).Mul(progress))
	}

	// The padded steps span [0, duration], so this is only hit with degenerate data.
	return steps[len(steps)-1].Price
}

func linearPrice(elapsed decimal.Decimal, a AuctionPricing) decimal.Decimal {
	priceRange := a.StartPrice.Sub(a.FloorPrice)
	progress := elapsed.Div(decimal.NewFromInt(int64(a.DurationMinutes)))
	return decimal.Max(a.StartPrice.Sub(priceRange.Mul(progress)), a.FloorPrice)
}

// clamp bounds v to [lo, hi]; lo wins if the bounds are inverted.
func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.GreaterThan(hi) {
		v = hi
	}
	if v.LessThan(lo) {
		v = lo
	}
	return v
}
