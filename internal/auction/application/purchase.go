package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/cristianortiz/dutchAuction/internal/shared/logger"
	userdomain "github.com/cristianortiz/dutchAuction/internal/user/domain"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// solanaPubkeyLen is the decoded size of a Solana wallet address.
const solanaPubkeyLen = 32

// PurchaseDTO is DTO input for the Purchase useCase. The client never sends a
// price to pay, only an optional ceiling it is willing to accept.
type PurchaseDTO struct {
	AuctionID   uuid.UUID        `json:"auction_id"`
	BuyerID     uuid.UUID        `json:"buyer_id"`
	BuyerWallet string           `json:"buyer_wallet"`
	MaxPrice    *decimal.Decimal `json:"max_price_sol,omitempty"`
}

// PurchaseUseCase is the settlement boundary: it fixes the auction price with
// the server clock at the moment of sale and records it on the order.
type PurchaseUseCase struct {
	auctionRepo domain.AuctionRepository
	orderRepo   domain.OrderRepository
	userRepo    userdomain.UserRepository
	tx          domain.Transactor
	now         func() time.Time
}

// NewPurchaseUseCase creates a new instace of PurchaseUseCase struct, it receives dependency through injection
func NewPurchaseUseCase(auctionRepo domain.AuctionRepository,
	orderRepo domain.OrderRepository,
	userRepo userdomain.UserRepository,
	tx domain.Transactor) *PurchaseUseCase {

	return &PurchaseUseCase{
		auctionRepo: auctionRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		tx:          tx,
		now:         time.Now,
	}
}

// ValidateWallet checks that address is a base58 encoded 32 byte public key.
func ValidateWallet(address string) error {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != solanaPubkeyLen {
		return fmt.Errorf("%w: %q", domain.ErrInvalidWallet, address)
	}
	return nil
}

func (uc *PurchaseUseCase) Execute(ctx context.Context, cmd PurchaseDTO) (*domain.Order, error) {
	log.Info("Executing PurchaseUseCase",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("buyerID", cmd.BuyerID.String()),
	)
	// 1. input validation, not business rules
	if err := ValidateWallet(cmd.BuyerWallet); err != nil {
		log.Warn("PurchaseUseCase: Invalid buyer wallet",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("buyerID", cmd.BuyerID.String()),
		)
		return nil, err
	}
	buyer, err := uc.userRepo.GetByID(ctx, cmd.BuyerID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, domain.ErrBuyerNotFound
		}
		return nil, fmt.Errorf("purchase use case: failed to get buyer %s: %w", cmd.BuyerID, err)
	}
	// the order must settle to the wallet registered on the buyer's account
	if buyer.WalletAddress != cmd.BuyerWallet {
		log.Warn("PurchaseUseCase: wallet does not match buyer account",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("buyerID", cmd.BuyerID.String()),
		)
		return nil, domain.ErrWalletMismatch
	}

	var order *domain.Order
	err = uc.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// 2. lock the auction so a concurrent purchase waits for this one
		a, err := uc.auctionRepo.GetForUpdate(txCtx, cmd.AuctionID)
		if err != nil {
			if !errors.Is(err, domain.ErrAuctionNotFound) {
				log.Error("PurchaseUseCase: Failed to get auction",
					zap.String("auctionID", cmd.AuctionID.String()),
					zap.Error(err),
				)
			}
			return fmt.Errorf("purchase use case: failed to get auction %s: %w", cmd.AuctionID, err)
		}

		// 3. the authoritative price, read once from the server clock
		now := uc.now()
		price := pricing.CurrentPrice(a.Pricing(), now)
		if cmd.MaxPrice != nil && price.GreaterThan(*cmd.MaxPrice) {
			log.Warn("PurchaseUseCase: price above buyer limit",
				zap.String("auctionID", a.ID.String()),
				zap.String("price", price.String()),
				zap.String("maxPrice", cmd.MaxPrice.String()),
			)
			return fmt.Errorf("purchase use case: price %s for auction %s: %w", price, a.ID, domain.ErrPriceAboveLimit)
		}

		if err := a.MarkSold(price, now); err != nil {
			return fmt.Errorf("purchase use case: auction %s: %w", a.ID, err)
		}

		// 4. persist order and auction inside the transaction
		order = domain.NewOrder(uuid.New(), a.ID, buyer.ID, buyer.WalletAddress, price, now)
		if err := uc.orderRepo.Save(txCtx, order); err != nil {
			log.Error("PurchaseUseCase: Failed to save order",
				zap.String("auctionID", a.ID.String()),
				zap.String("orderID", order.ID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("purchase use case: failed to save order for auction %s: %w", a.ID, err)
		}
		if err := uc.auctionRepo.Save(txCtx, a); err != nil {
			log.Error("PurchaseUseCase: Failed to save sold auction",
				zap.String("auctionID", a.ID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("purchase use case: failed to save auction %s: %w", a.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Auction purchased",
		zap.String("auctionID", order.AuctionID.String()),
		zap.String("orderID", order.ID.String()),
		zap.String("buyerID", order.BuyerID.String()),
		zap.String("price", order.Price.String()),
	)
	return order, nil
}
