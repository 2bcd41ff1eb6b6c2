package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/cristianortiz/dutchAuction/internal/shared/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_Postgres(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	auctions := NewAuctionRepository(pool)
	orders := NewOrderRepository(pool)
	tx := db.NewTransactor(pool)

	startsAt := time.Now().UTC().Add(-10 * time.Minute).Truncate(time.Microsecond)
	a := domain.NewAuction(uuid.New(), uuid.New(), "Validator hoodie", "size L",
		decimal.RequireFromString("2.5"), decimal.RequireFromString("0.123456789"),
		pricing.DecayCustom, []pricing.DecayStep{
			{TimeMinutes: 20, Price: decimal.RequireFromString("1")},
			{TimeMinutes: 5, Price: decimal.RequireFromString("2")},
		}, 60, startsAt)

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, auctions.Save(ctx, a))

		got, err := auctions.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.Title, got.Title)
		assert.True(t, got.FloorPrice.Equal(a.FloorPrice), "floor %s", got.FloorPrice)
		assert.Equal(t, pricing.DecayCustom, got.DecayType)
		assert.Equal(t, a.DecaySteps[0].TimeMinutes, got.DecaySteps[0].TimeMinutes)
		assert.True(t, got.DecaySteps[1].Price.Equal(decimal.RequireFromString("2")))
		assert.True(t, got.StartsAt.Equal(startsAt))
		assert.Equal(t, domain.StatusOpen, got.Status)
		assert.Nil(t, got.SoldPrice)
	})

	t.Run("missing auction", func(t *testing.T) {
		_, err := auctions.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
	})

	t.Run("lock requires transaction", func(t *testing.T) {
		_, err := auctions.GetForUpdate(ctx, a.ID)
		assert.Error(t, err)
	})

	t.Run("list by status and store", func(t *testing.T) {
		open, err := auctions.List(ctx, domain.ListFilter{Statuses: []domain.AuctionStatus{domain.StatusOpen}, StoreID: &a.StoreID})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, a.ID, open[0].ID)

		all, err := auctions.List(ctx, domain.ListFilter{})
		require.NoError(t, err)
		assert.NotEmpty(t, all)
	})

	t.Run("purchase in transaction", func(t *testing.T) {
		buyer := uuid.New()
		_, err := pool.Exec(ctx, `INSERT INTO users (id, wallet_address) VALUES ($1, $2)`, buyer, "wallet-"+buyer.String())
		require.NoError(t, err)

		now := time.Now().UTC().Truncate(time.Microsecond)
		err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			locked, err := auctions.GetForUpdate(txCtx, a.ID)
			if err != nil {
				return err
			}
			price := pricing.CurrentPrice(locked.Pricing(), now)
			if err := locked.MarkSold(price, now); err != nil {
				return err
			}
			if err := orders.Save(txCtx, domain.NewOrder(uuid.New(), locked.ID, buyer, "wallet-"+buyer.String(), price, now)); err != nil {
				return err
			}
			return auctions.Save(txCtx, locked)
		})
		require.NoError(t, err)

		sold, err := auctions.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSold, sold.Status)
		require.NotNil(t, sold.SoldPrice)

		order, err := orders.GetByAuctionID(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.True(t, order.Price.Equal(*sold.SoldPrice))
	})

	t.Run("failed transaction rolls back", func(t *testing.T) {
		other := domain.NewAuction(uuid.New(), uuid.New(), "Mug", "", decimal.NewFromInt(1), decimal.Zero,
			pricing.DecayLinear, nil, 10, time.Now().UTC())
		boom := errors.New("boom")

		err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := auctions.Save(txCtx, other); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = auctions.GetByID(ctx, other.ID)
		assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
		_, err = orders.GetByAuctionID(ctx, other.ID)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}
