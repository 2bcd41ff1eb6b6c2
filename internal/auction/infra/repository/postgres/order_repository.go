package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/shared/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository implements domain.OrderRepository interface
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates new instance of OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save only inserts; the auction status update happens in the same transaction from the application layer.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	query := `
        INSERT INTO orders (id, auction_id, buyer_id, buyer_wallet, price_sol, placed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := db.Executor(ctx, r.pool).Exec(ctx, query,
		o.ID,
		o.AuctionID,
		o.BuyerID,
		o.BuyerWallet,
		o.Price,
		o.PlacedAt,
	)
	return err
}

// GetByAuctionID returns domain.ErrOrderNotFound when the auction has no order yet.
func (r *OrderRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) (*domain.Order, error) {
	query := `
        SELECT id, auction_id, buyer_id, buyer_wallet, price_sol, placed_at
        FROM orders
        WHERE auction_id = $1
    `
	o := &domain.Order{}
	err := db.Executor(ctx, r.pool).QueryRow(ctx, query, auctionID).Scan(
		&o.ID,
		&o.AuctionID,
		&o.BuyerID,
		&o.BuyerWallet,
		&o.Price,
		&o.PlacedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order for auction %s: %w", auctionID, err)
	}
	return o, nil
}
