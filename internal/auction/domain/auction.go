package domain

import (
	"fmt"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/cristianortiz/dutchAuction/internal/shared/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionStatus is the persisted state of an auction. Whether an open auction is
// scheduled, live or ended is never stored; it is derived from the clock (see Phase).
type AuctionStatus string

const (
	StatusOpen      AuctionStatus = "open"
	StatusSold      AuctionStatus = "sold"
	StatusCancelled AuctionStatus = "cancelled"
)

// AuctionPhase is what a buyer sees at a given instant
type AuctionPhase string

const (
	PhaseScheduled AuctionPhase = "scheduled"
	PhaseLive      AuctionPhase = "live"
	PhaseEnded     AuctionPhase = "ended"
	PhaseSold      AuctionPhase = "sold"
	PhaseCancelled AuctionPhase = "cancelled"
)

// Auction is a Dutch auction listing. Its price is never a stored field: it is
// re-derived from the decay configuration every time it is needed.
type Auction struct {
	ID              uuid.UUID
	StoreID         uuid.UUID
	Title           string
	Description     string
	StartPrice      decimal.Decimal
	FloorPrice      decimal.Decimal
	DecayType       pricing.DecayType
	DecaySteps      []pricing.DecayStep
	DurationMinutes int
	StartsAt        time.Time
	Status          AuctionStatus
	SoldPrice       *decimal.Decimal // price locked at purchase
	SoldAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewAuction(id, storeID uuid.UUID, title, description string, startPrice, floorPrice decimal.Decimal,
	decayType pricing.DecayType, steps []pricing.DecayStep, durationMinutes int, startsAt time.Time) *Auction {
	return &Auction{
		ID:              id,
		StoreID:         storeID,
		Title:           title,
		Description:     description,
		StartPrice:      startPrice,
		FloorPrice:      floorPrice,
		DecayType:       decayType,
		DecaySteps:      steps,
		DurationMinutes: durationMinutes,
		StartsAt:        startsAt,
		Status:          StatusOpen, //open until sold or cancelled
	}
}

// Pricing builds the engine input from the stored configuration
func (a *Auction) Pricing() pricing.AuctionPricing {
	return pricing.AuctionPricing{
		StartPrice:      a.StartPrice,
		FloorPrice:      a.FloorPrice,
		Curve:           pricing.NewCurve(a.DecayType, a.DecaySteps),
		DurationMinutes: a.DurationMinutes,
		StartsAt:        a.StartsAt,
	}
}

func (a *Auction) EndsAt() time.Time {
	return a.Pricing().EndsAt()
}

// Phase derives the buyer-facing state at instant now.
func (a *Auction) Phase(now time.Time) AuctionPhase {
	switch a.Status {
	case StatusSold:
		return PhaseSold
	case StatusCancelled:
		return PhaseCancelled
	}
	if now.Before(a.StartsAt) {
		return PhaseScheduled
	}
	if !now.Before(a.EndsAt()) {
		return PhaseEnded
	}
	return PhaseLive
}

// Validate is the guard the pricing engine relies on; the engine itself never
// checks its input.
func (a *Auction) Validate() error {
	switch {
	case a.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidAuction)
	case a.FloorPrice.IsNegative():
		return fmt.Errorf("%w: floor price cannot be negative", ErrInvalidAuction)
	case a.StartPrice.LessThan(a.FloorPrice):
		return fmt.Errorf("%w: start price must be at least the floor price", ErrInvalidAuction)
	case a.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidAuction)
	case !a.DecayType.Valid():
		return fmt.Errorf("%w: unknown decay type %q", ErrInvalidAuction, a.DecayType)
	case a.StartsAt.IsZero():
		return fmt.Errorf("%w: start time is required", ErrInvalidAuction)
	}
	for i, step := range a.DecaySteps {
		if step.TimeMinutes < 0 {
			return fmt.Errorf("%w: step %d has a negative time", ErrInvalidAuction, i)
		}
		if step.Price.IsNegative() {
			return fmt.Errorf("%w: step %d has a negative price", ErrInvalidAuction, i)
		}
	}
	return nil
}

// MarkSold closes a live auction at the given server-computed price.
func (a *Auction) MarkSold(price decimal.Decimal, now time.Time) error {
	switch phase := a.Phase(now); phase {
	case PhaseLive:
	case PhaseSold:
		return ErrAuctionAlreadySold
	default:
		log.Warn("Purchase rejected: auction not live",
			zap.String("auctionID", a.ID.String()),
			zap.String("phase", string(phase)),
		)
		return ErrAuctionNotLive
	}

	a.Status = StatusSold
	a.SoldPrice = &price
	a.SoldAt = &now
	log.Info("Auction sold",
		zap.String("auctionID", a.ID.String()),
		zap.String("price", price.String()),
		zap.Time("soldAt", now),
	)
	return nil
}

// Cancel withdraws an auction that has not been sold
func (a *Auction) Cancel() error {
	if a.Status != StatusOpen {
		log.Warn("Attempted to cancel auction that is already closed",
			zap.String("auctionID", a.ID.String()),
			zap.String("status", string(a.Status)),
		)
		return ErrAuctionAlreadyClosed
	}

	a.Status = StatusCancelled
	log.Info("Auction cancelled", zap.String("auctionID", a.ID.String()))
	return nil
}
