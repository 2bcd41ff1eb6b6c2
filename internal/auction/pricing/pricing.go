// Package pricing computes Dutch auction prices from an auction's static
// configuration and an explicit instant. Every function is pure: nothing is
// cached, nothing is mutated, and the same inputs always yield the same output,
// so the result can be trusted when it gates a real payment.
package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SOLDecimals is the number of decimal places a SOL amount carries (lamports).
const SOLDecimals int32 = 9

// DecayType names the shape of the price-vs-time curve as it is persisted.
type DecayType string

const (
	DecayLinear  DecayType = "LINEAR"
	DecayStepped DecayType = "STEPPED"
	DecayCustom  DecayType = "CUSTOM"
)

// Valid reports whether t is one of the known decay types.
func (t DecayType) Valid() bool {
	switch t {
	case DecayLinear, DecayStepped, DecayCustom:
		return true
	}
	return false
}

// DecayStep is a control point: at TimeMinutes after start the price is Price.
type DecayStep struct {
	TimeMinutes int             `json:"timeMinutes"`
	Price       decimal.Decimal `json:"priceSol"`
}

// Curve is the tagged decay variant. Only LinearCurve, SteppedCurve and
// CustomCurve implement it.
type Curve interface {
	Type() DecayType
	priceAt(elapsed decimal.Decimal, a AuctionPricing) decimal.Decimal
}

// LinearCurve drifts from start to floor at a constant rate.
type LinearCurve struct{}

// SteppedCurve holds the price of the latest reached step, producing a staircase.
type SteppedCurve struct {
	Steps []DecayStep
}

// CustomCurve interpolates linearly between control points.
type CustomCurve struct {
	Steps []DecayStep
}

func (LinearCurve) Type() DecayType  { return DecayLinear }
func (SteppedCurve) Type() DecayType { return DecayStepped }
func (CustomCurve) Type() DecayType  { return DecayCustom }

// NewCurve builds the curve for a persisted (decay type, steps) pair. Unknown
// types are treated as linear.
func NewCurve(t DecayType, steps []DecayStep) Curve {
	switch t {
	case DecayStepped:
		return SteppedCurve{Steps: steps}
	case DecayCustom:
		return CustomCurve{Steps: steps}
	default:
		return LinearCurve{}
	}
}

// AuctionPricing is the read-only input of every pricing call.
type AuctionPricing struct {
	StartPrice      decimal.Decimal
	FloorPrice      decimal.Decimal
	Curve           Curve
	DurationMinutes int
	StartsAt        time.Time
}

// EndsAt is the instant the price reaches the floor.
func (a AuctionPricing) EndsAt() time.Time {
	return a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (a AuctionPricing) curve() Curve {
	if a.Curve == nil {
		return LinearCurve{}
	}
	return a.Curve
}

// sortedSteps returns a stably sorted copy, leaving the caller's slice untouched.
func sortedSteps(steps []DecayStep) []DecayStep {
	out := make([]DecayStep, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeMinutes < out[j].TimeMinutes
	})
	return out
}
