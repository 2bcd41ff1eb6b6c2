package domain

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows AuctionRepository.List. Empty Statuses means every status.
type ListFilter struct {
	Statuses []AuctionStatus
	StoreID  *uuid.UUID
}

type AuctionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	// GetForUpdate loads the auction and locks it until the surrounding
	// transaction ends. Must be called inside Transactor.WithinTransaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Auction, error)
	Save(ctx context.Context, auction *Auction) error
	List(ctx context.Context, filter ListFilter) ([]*Auction, error)
}

type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	// GetByAuctionID returns ErrOrderNotFound when the auction has not been sold.
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) (*Order, error)
}

// Transactor runs fn inside a single database transaction. Repositories called
// with the ctx handed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
