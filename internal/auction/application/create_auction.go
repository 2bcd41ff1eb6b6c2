package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateAuctionDTO is the input DTO for creating a Dutch auction listing.
type CreateAuctionDTO struct {
	StoreID         uuid.UUID           `json:"store_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	StartPrice      decimal.Decimal     `json:"start_price_sol"`
	FloorPrice      decimal.Decimal     `json:"floor_price_sol"`
	DecayType       pricing.DecayType   `json:"decay_type"`
	DecaySteps      []pricing.DecayStep `json:"decay_steps,omitempty"`
	StepCount       int                 `json:"step_count,omitempty"` // used when a STEPPED auction has no steps
	DurationMinutes int                 `json:"duration_minutes"`
	StartsAt        time.Time           `json:"starts_at"`
}

// CreateAuctionUseCase validates and stores a new auction.
type CreateAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
}

func NewCreateAuctionUseCase(auctionRepo domain.AuctionRepository) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{auctionRepo: auctionRepo}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	decayType := cmd.DecayType
	if decayType == "" {
		decayType = pricing.DecayLinear
	}

	steps := cmd.DecaySteps
	switch decayType {
	case pricing.DecayLinear:
		steps = nil
	case pricing.DecayStepped:
		if len(steps) == 0 && cmd.DurationMinutes > 0 {
			steps = pricing.GenerateDefaultSteps(cmd.StartPrice, cmd.FloorPrice, cmd.DurationMinutes, cmd.StepCount)
		}
	}

	a := domain.NewAuction(uuid.New(), cmd.StoreID, cmd.Title, cmd.Description,
		cmd.StartPrice, cmd.FloorPrice, decayType, steps, cmd.DurationMinutes, cmd.StartsAt)
	if err := a.Validate(); err != nil {
		log.Warn("CreateAuctionUseCase: rejected auction",
			zap.String("storeID", cmd.StoreID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.auctionRepo.Save(ctx, a); err != nil {
		log.Error("CreateAuctionUseCase: Failed to save auction",
			zap.String("auctionID", a.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create auction use case: failed to save auction: %w", err)
	}

	log.Info("Auction created",
		zap.String("auctionID", a.ID.String()),
		zap.String("decayType", string(a.DecayType)),
		zap.Int("steps", len(a.DecaySteps)),
		zap.Time("startsAt", a.StartsAt),
	)
	return a, nil
}
