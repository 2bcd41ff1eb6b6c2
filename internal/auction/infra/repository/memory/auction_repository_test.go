package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuction(storeID uuid.UUID, startsAt time.Time) *domain.Auction {
	return domain.NewAuction(uuid.New(), storeID, "lot", "",
		decimal.NewFromInt(10), decimal.NewFromInt(5), pricing.DecayStepped,
		[]pricing.DecayStep{{TimeMinutes: 5, Price: decimal.NewFromInt(7)}}, 30, startsAt)
}

func TestAuctionRepository_SaveReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	a := newAuction(uuid.New(), time.Now())
	require.NoError(t, repo.Save(ctx, a))

	a.DecaySteps[0].Price = decimal.NewFromInt(1)
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.DecaySteps[0].Price.Equal(decimal.NewFromInt(7)))

	got.Title = "changed"
	again, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "lot", again.Title)
	assert.False(t, again.CreatedAt.IsZero())
}

func TestAuctionRepository_NotFound(t *testing.T) {
	repo := NewAuctionRepository()

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAuctionRepository()
	store := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	late := newAuction(store, base.Add(time.Hour))
	early := newAuction(store, base)
	other := newAuction(uuid.New(), base)
	sold := newAuction(store, base)
	sold.Status = domain.StatusSold
	for _, a := range []*domain.Auction{late, early, other, sold} {
		require.NoError(t, repo.Save(ctx, a))
	}

	all, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	open, err := repo.List(ctx, domain.ListFilter{Statuses: []domain.AuctionStatus{domain.StatusOpen}, StoreID: &store})
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, early.ID, open[0].ID)
	assert.Equal(t, late.ID, open[1].ID)
}

func TestOrderRepository_OneOrderPerAuction(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	auctionID := uuid.New()

	_, err := repo.GetByAuctionID(ctx, auctionID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	first := domain.NewOrder(uuid.New(), auctionID, uuid.New(), "wallet", decimal.NewFromInt(6), time.Now())
	require.NoError(t, repo.Save(ctx, first))
	assert.Error(t, repo.Save(ctx, domain.NewOrder(uuid.New(), auctionID, uuid.New(), "wallet", decimal.NewFromInt(5), time.Now())))

	got, err := repo.GetByAuctionID(ctx, auctionID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}
