package application

import (
	"context"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionQuoteDTO is the output DTO exposing an auction and its price at QuotedAt to the UI/WS.
// It is for display only; purchases always recompute the price.
type AuctionQuoteDTO struct {
	AuctionID       uuid.UUID              `json:"auction_id"`
	StoreID         uuid.UUID              `json:"store_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Status          string                 `json:"status"`
	Phase           string                 `json:"phase"`
	DecayType       string                 `json:"decay_type"`
	DecaySteps      []pricing.DecayStep    `json:"decay_steps,omitempty"`
	StartPrice      decimal.Decimal        `json:"start_price_sol"`
	FloorPrice      decimal.Decimal        `json:"floor_price_sol"`
	CurrentPrice    decimal.Decimal        `json:"current_price_sol"`
	Temperature     decimal.Decimal        `json:"temperature"`
	DurationMinutes int                    `json:"duration_minutes"`
	StartsAt        time.Time              `json:"starts_at"`
	EndsAt          time.Time              `json:"ends_at"`
	TimeRemaining   pricing.Countdown      `json:"time_remaining"`
	TimeUntilStart  pricing.StartCountdown `json:"time_until_start"`
	SoldPrice       *decimal.Decimal       `json:"sold_price_sol,omitempty"`
	SoldAt          *time.Time             `json:"sold_at,omitempty"`
	QuotedAt        time.Time              `json:"quoted_at"`
}

// NewAuctionQuote computes the quote for a at instant now. A sold auction
// reports the price it was sold at.
func NewAuctionQuote(a *domain.Auction, now time.Time) *AuctionQuoteDTO {
	p := a.Pricing()
	dto := &AuctionQuoteDTO{
		AuctionID:       a.ID,
		StoreID:         a.StoreID,
		Title:           a.Title,
		Description:     a.Description,
		Status:          string(a.Status),
		Phase:           string(a.Phase(now)),
		DecayType:       string(a.DecayType),
		DecaySteps:      a.DecaySteps,
		StartPrice:      a.StartPrice,
		FloorPrice:      a.FloorPrice,
		CurrentPrice:    pricing.CurrentPrice(p, now),
		Temperature:     pricing.Temperature(p, now).Round(2),
		DurationMinutes: a.DurationMinutes,
		StartsAt:        a.StartsAt,
		EndsAt:          p.EndsAt(),
		TimeRemaining:   pricing.TimeRemaining(p, now),
		TimeUntilStart:  pricing.TimeUntilStart(a.StartsAt, now),
		SoldPrice:       a.SoldPrice,
		SoldAt:          a.SoldAt,
		QuotedAt:        now,
	}
	if a.SoldPrice != nil {
		dto.CurrentPrice = *a.SoldPrice
	}
	return dto
}

// GetAuctionQuoteUseCase retrieves an auction and prices it with the server clock
type GetAuctionQuoteUseCase struct {
	auctionRepo domain.AuctionRepository
	now         func() time.Time
}

// NewGetAuctionQuoteUseCase creates a new instance of GetAuctionQuoteUseCase.
func NewGetAuctionQuoteUseCase(auctionRepo domain.AuctionRepository) *GetAuctionQuoteUseCase {
	return &GetAuctionQuoteUseCase{
		auctionRepo: auctionRepo,
		now:         time.Now,
	}
}

func (uc *GetAuctionQuoteUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionQuoteDTO, error) {
	a, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return NewAuctionQuote(a, uc.now()), nil
}
