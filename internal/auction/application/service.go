package application

import (
	"context"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionService defines application interface layer of auction module
// exposes uses cases to external layer, aka infra
type AuctionService interface {
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error)
	GetQuote(ctx context.Context, auctionID uuid.UUID) (*AuctionQuoteDTO, error)
	ListAuctions(ctx context.Context, query ListAuctionsDTO) ([]*AuctionQuoteDTO, error)
	// Purchase buys the auction at the price computed when the request is handled
	Purchase(ctx context.Context, cmd PurchaseDTO) (*domain.Order, error)
	CancelAuction(ctx context.Context, auctionID uuid.UUID) error
}

// concret implementation of AuctionService (struct)
type auctionService struct {
	createUC   *CreateAuctionUseCase
	quoteUC    *GetAuctionQuoteUseCase
	listUC     *ListAuctionsUseCase
	purchaseUC *PurchaseUseCase
	cancelUC   *CancelAuctionUseCase
}

func NewAuctionService(createUC *CreateAuctionUseCase,
	quoteUC *GetAuctionQuoteUseCase,
	listUC *ListAuctionsUseCase,
	purchaseUC *PurchaseUseCase,
	cancelUC *CancelAuctionUseCase) AuctionService {
	return &auctionService{
		createUC:   createUC,
		quoteUC:    quoteUC,
		listUC:     listUC,
		purchaseUC: purchaseUC,
		cancelUC:   cancelUC,
	}
}

func (as *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	return as.createUC.Execute(ctx, cmd)
}

func (as *auctionService) GetQuote(ctx context.Context, auctionID uuid.UUID) (*AuctionQuoteDTO, error) {
	return as.quoteUC.Execute(ctx, auctionID)
}

func (as *auctionService) ListAuctions(ctx context.Context, query ListAuctionsDTO) ([]*AuctionQuoteDTO, error) {
	return as.listUC.Execute(ctx, query)
}

// Purchase implements AuctionService.
func (as *auctionService) Purchase(ctx context.Context, cmd PurchaseDTO) (*domain.Order, error) {
	return as.purchaseUC.Execute(ctx, cmd)
}

func (as *auctionService) CancelAuction(ctx context.Context, auctionID uuid.UUID) error {
	return as.cancelUC.Execute(ctx, auctionID)
}
