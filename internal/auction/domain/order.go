package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order records a purchase of an auction at the price the server computed at
// PlacedAt. It is the only place a resolved auction price is persisted.
type Order struct {
	ID          uuid.UUID
	AuctionID   uuid.UUID
	BuyerID     uuid.UUID
	BuyerWallet string
	Price       decimal.Decimal
	PlacedAt    time.Time
}

// NewOrder creates a new Order instance
func NewOrder(id, auctionID, buyerID uuid.UUID, buyerWallet string, price decimal.Decimal, placedAt time.Time) *Order {
	return &Order{
		ID:          id,
		AuctionID:   auctionID,
		BuyerID:     buyerID,
		BuyerWallet: buyerWallet,
		Price:       price,
		PlacedAt:    placedAt,
	}
}
