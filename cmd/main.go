package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	auctionmemory "github.com/cristianortiz/dutchAuction/internal/auction/infra/repository/memory"
	auctionpostgres "github.com/cristianortiz/dutchAuction/internal/auction/infra/repository/postgres"
	"github.com/cristianortiz/dutchAuction/internal/auction/infra/rest"
	auctionws "github.com/cristianortiz/dutchAuction/internal/auction/infra/websocket"
	"github.com/cristianortiz/dutchAuction/internal/shared/config"
	"github.com/cristianortiz/dutchAuction/internal/shared/db"
	"github.com/cristianortiz/dutchAuction/internal/shared/db/migrations"
	"github.com/cristianortiz/dutchAuction/internal/shared/httpserver"
	"github.com/cristianortiz/dutchAuction/internal/shared/logger"
	"github.com/cristianortiz/dutchAuction/internal/shared/websocket"
	userdomain "github.com/cristianortiz/dutchAuction/internal/user/domain"
	usermemory "github.com/cristianortiz/dutchAuction/internal/user/infra/repository/memory"
	userpostgres "github.com/cristianortiz/dutchAuction/internal/user/infra/repository/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// repositories groups the storage backend selected by STORAGE.
type repositories struct {
	auctions domain.AuctionRepository
	orders   domain.OrderRepository
	users    userdomain.UserRepository
	tx       domain.Transactor
	close    func()
}

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.LogLevel != "" {
		// already validated by config.Load
		_ = logger.SetLevel(cfg.LogLevel)
	}
	log.Info("Starting DutchAuction server...",
		zap.String("env", cfg.AppEnv),
		zap.Bool("production", cfg.IsProduction()),
		zap.String("log_level", logger.Level().String()),
		zap.String("storage", cfg.Storage),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("Storage initialization failed", zap.Error(err))
	}
	defer repos.close()

	auctionService := application.NewAuctionService(
		application.NewCreateAuctionUseCase(repos.auctions),
		application.NewGetAuctionQuoteUseCase(repos.auctions),
		application.NewListAuctionsUseCase(repos.auctions),
		application.NewPurchaseUseCase(repos.auctions, repos.orders, repos.users, repos.tx),
		application.NewCancelAuctionUseCase(repos.auctions, repos.tx),
	)

	hub := websocket.NewHub()
	wsHandler := auctionws.NewAuctionWSHandler(auctionService, hub)
	broadcaster := auctionws.NewPriceBroadcaster(auctionService, hub, cfg.PriceTickInterval)

	server := httpserver.NewServer()
	rest.NewAuctionHandler(auctionService, wsHandler).RegisterRoutes(server.Router().Group("/api"))
	wsHandler.RegisterRoutes(ctx, server.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		wsHandler.ListenForMessages(gctx)
		return nil
	})
	g.Go(func() error {
		broadcaster.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return server.Start(gctx, cfg.HTTPAddr)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("DutchAuction server stopped")
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		logger.GetLogger().Warn("Using in-memory storage, data is lost on restart")
		return &repositories{
			auctions: auctionmemory.NewAuctionRepository(),
			orders:   auctionmemory.NewOrderRepository(),
			users:    usermemory.NewUserRepository(),
			tx:       auctionmemory.NewTransactor(),
			close:    func() {},
		}, nil
	}

	dsn := cfg.DB.DSN()
	logger.GetLogger().Info("Running database migrations...")
	if err := migrations.RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	logger.GetLogger().Info("Database migrations completed successfully.")

	pool, err := db.GetPostgresDBPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &repositories{
		auctions: auctionpostgres.NewAuctionRepository(pool),
		orders:   auctionpostgres.NewOrderRepository(pool),
		users:    userpostgres.NewUserRepository(pool),
		tx:       db.NewTransactor(pool),
		close:    pool.Close,
	}, nil
}
