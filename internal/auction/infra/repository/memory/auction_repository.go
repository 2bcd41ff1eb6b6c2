// Package memory holds map-backed repositories used by tests and by the
// STORAGE=memory development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/google/uuid"
)

// AuctionRepository is an in-memory domain.AuctionRepository. It stores copies,
// so callers never share state with the store.
type AuctionRepository struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*domain.Auction
	now      func() time.Time
}

func NewAuctionRepository() *AuctionRepository {
	return &AuctionRepository{
		auctions: make(map[uuid.UUID]*domain.Auction),
		now:      time.Now,
	}
}

func (r *AuctionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return cloneAuction(a), nil
}

// GetForUpdate relies on Transactor serialising transactions instead of row locks.
func (r *AuctionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	return r.GetByID(ctx, id)
}

func (r *AuctionRepository) Save(_ context.Context, a *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneAuction(a)
	now := r.now()
	if existing, ok := r.auctions[a.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.auctions[a.ID] = stored
	return nil
}

func (r *AuctionRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Auction
	for _, a := range r.auctions {
		if !matches(a, filter) {
			continue
		}
		out = append(out, cloneAuction(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func matches(a *domain.Auction, filter domain.ListFilter) bool {
	if filter.StoreID != nil && a.StoreID != *filter.StoreID {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, s := range filter.Statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

func cloneAuction(a *domain.Auction) *domain.Auction {
	c := *a
	if a.DecaySteps != nil {
		c.DecaySteps = append([]pricing.DecayStep(nil), a.DecaySteps...)
	}
	if a.SoldPrice != nil {
		p := *a.SoldPrice
		c.SoldPrice = &p
	}
	if a.SoldAt != nil {
		t := *a.SoldAt
		c.SoldAt = &t
	}
	return &c
}
