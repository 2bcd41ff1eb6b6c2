package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/cristianortiz/dutchAuction/internal/shared/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const auctionColumns = `id, store_id, title, description, start_price_sol, floor_price_sol, decay_type, decay_steps,
        duration_minutes, starts_at, status, sold_price_sol, sold_at, created_at, updated_at`

// AuctionRepository implements domain.AuctionRepository interface
type AuctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

// Save inserts or updates an auction. created_at and updated_at are left to the DB defaults on insert.
func (r *AuctionRepository) Save(ctx context.Context, a *domain.Auction) error {
	steps, err := encodeSteps(a.DecaySteps)
	if err != nil {
		return err
	}

	var soldPrice decimal.NullDecimal
	if a.SoldPrice != nil {
		soldPrice = decimal.NewNullDecimal(*a.SoldPrice)
	}

	query := `
        INSERT INTO auctions (id, store_id, title, description, start_price_sol, floor_price_sol, decay_type,
            decay_steps, duration_minutes, starts_at, status, sold_price_sol, sold_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE
        SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            start_price_sol = EXCLUDED.start_price_sol,
            floor_price_sol = EXCLUDED.floor_price_sol,
            decay_type = EXCLUDED.decay_type,
            decay_steps = EXCLUDED.decay_steps,
            duration_minutes = EXCLUDED.duration_minutes,
            starts_at = EXCLUDED.starts_at,
            status = EXCLUDED.status,
            sold_price_sol = EXCLUDED.sold_price_sol,
            sold_at = EXCLUDED.sold_at,
            updated_at = NOW()
    `
	_, err = db.Executor(ctx, r.pool).Exec(ctx, query,
		a.ID,
		a.StoreID,
		a.Title,
		a.Description,
		a.StartPrice,
		a.FloorPrice,
		string(a.DecayType),
		steps,
		a.DurationMinutes,
		a.StartsAt,
		string(a.Status),
		soldPrice,
		a.SoldAt,
	)
	return err
}

// GetByID returns domain.ErrAuctionNotFound when the auction does not exist.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate locks the auction row for the rest of the transaction in ctx.
func (r *AuctionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	if !db.InTransaction(ctx) {
		return nil, errors.New("GetForUpdate called outside a transaction")
	}
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *AuctionRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Auction, error) {
	a, err := scanAuction(db.Executor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns the auctions matching filter ordered by start time.
func (r *AuctionRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Auction, error) {
	var statuses []string
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}

	query := `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE ($1::text[] IS NULL OR status = ANY($1))
          AND ($2::uuid IS NULL OR store_id = $2)
        ORDER BY starts_at ASC, id ASC
    `
	rows, err := db.Executor(ctx, r.pool).Query(ctx, query, statuses, filter.StoreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return auctions, nil
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	var (
		decayType string
		status    string
		steps     []byte
		soldPrice decimal.NullDecimal
	)
	err := row.Scan(
		&a.ID,
		&a.StoreID,
		&a.Title,
		&a.Description,
		&a.StartPrice,
		&a.FloorPrice,
		&decayType,
		&steps,
		&a.DurationMinutes,
		&a.StartsAt,
		&status,
		&soldPrice,
		&a.SoldAt, // pointer handles NULL
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.DecayType = pricing.DecayType(decayType)
	a.Status = domain.AuctionStatus(status)
	if soldPrice.Valid {
		a.SoldPrice = &soldPrice.Decimal
	}
	if a.DecaySteps, err = decodeSteps(steps); err != nil {
		return nil, fmt.Errorf("auction %s: %w", a.ID, err)
	}
	return a, nil
}

func encodeSteps(steps []pricing.DecayStep) ([]byte, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("encode decay steps: %w", err)
	}
	return data, nil
}

func decodeSteps(data []byte) ([]pricing.DecayStep, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var steps []pricing.DecayStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("decode decay steps: %w", err)
	}
	return steps, nil
}
