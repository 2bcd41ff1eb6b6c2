package postgres

import (
	"context"
	"errors"

	"github.com/cristianortiz/dutchAuction/internal/shared/db"
	"github.com/cristianortiz/dutchAuction/internal/user/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository for PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID loads a user, returning domain.ErrUserNotFound when there is none.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, wallet_address FROM users WHERE id = $1`

	user := &domain.User{}
	err := db.Executor(ctx, r.pool).QueryRow(ctx, query, id).Scan(&user.ID, &user.WalletAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Save inserts a user or updates its wallet.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, wallet_address)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET wallet_address = EXCLUDED.wallet_address
    `
	_, err := db.Executor(ctx, r.pool).Exec(ctx, query, user.ID, user.WalletAddress)
	return err
}
