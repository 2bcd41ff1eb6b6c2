package application

import (
	"context"
	"fmt"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/google/uuid"
)

// CancelAuctionUseCase withdraws an open auction.
type CancelAuctionUseCase struct {
	auctionRepo domain.AuctionRepository
	tx          domain.Transactor
}

func NewCancelAuctionUseCase(auctionRepo domain.AuctionRepository, tx domain.Transactor) *CancelAuctionUseCase {
	return &CancelAuctionUseCase{auctionRepo: auctionRepo, tx: tx}
}

func (uc *CancelAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) error {
	return uc.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		a, err := uc.auctionRepo.GetForUpdate(txCtx, auctionID)
		if err != nil {
			return fmt.Errorf("cancel auction use case: failed to get auction %s: %w", auctionID, err)
		}
		if err := a.Cancel(); err != nil {
			return fmt.Errorf("cancel auction use case: auction %s: %w", auctionID, err)
		}
		return uc.auctionRepo.Save(txCtx, a)
	})
}
