package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/google/uuid"
)

// OrderRepository is an in-memory domain.OrderRepository enforcing one order per auction.
type OrderRepository struct {
	mu        sync.RWMutex
	byAuction map[uuid.UUID]domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byAuction: make(map[uuid.UUID]domain.Order)}
}

func (r *OrderRepository) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byAuction[o.AuctionID]; ok {
		return fmt.Errorf("order for auction %s already exists", o.AuctionID)
	}
	r.byAuction[o.AuctionID] = *o
	return nil
}

func (r *OrderRepository) GetByAuctionID(_ context.Context, auctionID uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byAuction[auctionID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}
