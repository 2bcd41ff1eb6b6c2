package rest

import (
	"errors"
	"strconv"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/auction/pricing"
	"github.com/cristianortiz/dutchAuction/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// SaleNotifier is told about completed purchases so live viewers can be updated.
type SaleNotifier interface {
	NotifySold(order *domain.Order)
}

// AuctionHandler exposes the auction module over HTTP.
type AuctionHandler struct {
	auctionService application.AuctionService
	notifier       SaleNotifier
}

// NewAuctionHandler creates a new AuctionHandler; notifier may be nil.
func NewAuctionHandler(auctionService application.AuctionService, notifier SaleNotifier) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService, notifier: notifier}
}

// RegisterRoutes mounts the auction routes on r.
func (h *AuctionHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/auctions")
	g.Get("/", h.list)
	g.Post("/", h.create)
	g.Get("/steps/preview", h.previewSteps)
	g.Get("/:id", h.get)
	g.Post("/:id/purchase", h.purchase)
	g.Post("/:id/cancel", h.cancel)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *AuctionHandler) list(c *fiber.Ctx) error {
	query := application.ListAuctionsDTO{
		Phase: application.PhaseFilter(c.Query("phase")),
		Sort:  application.SortOrder(c.Query("sort")),
	}
	if raw := c.Query("store_id"); raw != "" {
		storeID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid store_id")
		}
		query.StoreID = &storeID
	}

	quotes, err := h.auctionService.ListAuctions(c.UserContext(), query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(quotes)
}

func (h *AuctionHandler) get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	quote, err := h.auctionService.GetQuote(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(quote)
}

func (h *AuctionHandler) create(c *fiber.Ctx) error {
	var cmd application.CreateAuctionDTO
	if err := c.BodyParser(&cmd); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.auctionService.CreateAuction(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	quote, err := h.auctionService.GetQuote(c.UserContext(), a.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(quote)
}

type purchaseRequest struct {
	BuyerID     uuid.UUID        `json:"buyer_id"`
	BuyerWallet string           `json:"buyer_wallet"`
	MaxPrice    *decimal.Decimal `json:"max_price_sol,omitempty"`
}

type orderResponse struct {
	OrderID     uuid.UUID       `json:"order_id"`
	AuctionID   uuid.UUID       `json:"auction_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	BuyerWallet string          `json:"buyer_wallet"`
	Price       decimal.Decimal `json:"price_sol"`
	PlacedAt    time.Time       `json:"placed_at"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		OrderID:     o.ID,
		AuctionID:   o.AuctionID,
		BuyerID:     o.BuyerID,
		BuyerWallet: o.BuyerWallet,
		Price:       o.Price,
		PlacedAt:    o.PlacedAt,
	}
}

func (h *AuctionHandler) purchase(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	order, err := h.auctionService.Purchase(c.UserContext(), application.PurchaseDTO{
		AuctionID:   id,
		BuyerID:     req.BuyerID,
		BuyerWallet: req.BuyerWallet,
		MaxPrice:    req.MaxPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	if h.notifier != nil {
		h.notifier.NotifySold(order)
	}
	return c.Status(fiber.StatusCreated).JSON(newOrderResponse(order))
}

func (h *AuctionHandler) cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid auction id")
	}
	if err := h.auctionService.CancelAuction(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// previewSteps lets merchants see the default STEPPED schedule before creating an auction.
func (h *AuctionHandler) previewSteps(c *fiber.Ctx) error {
	start, err := decimal.NewFromString(c.Query("start"))
	if err != nil {
		return badRequest(c, "invalid start")
	}
	floor, err := decimal.NewFromString(c.Query("floor"))
	if err != nil {
		return badRequest(c, "invalid floor")
	}
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil || duration <= 0 {
		return badRequest(c, "invalid duration")
	}
	steps := c.QueryInt("steps", pricing.DefaultStepCount)
	if floor.IsNegative() || start.LessThan(floor) {
		return badRequest(c, "start must be at least floor and floor cannot be negative")
	}
	return c.JSON(pricing.GenerateDefaultSteps(start, floor, duration, steps))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrAuctionNotLive),
		errors.Is(err, domain.ErrAuctionAlreadySold),
		errors.Is(err, domain.ErrAuctionAlreadyClosed),
		errors.Is(err, domain.ErrPriceAboveLimit):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidAuction),
		errors.Is(err, domain.ErrInvalidWallet),
		errors.Is(err, domain.ErrWalletMismatch),
		errors.Is(err, domain.ErrBuyerNotFound):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, application.ErrInvalidQuery):
		status = fiber.StatusBadRequest
	}

	if status == fiber.StatusInternalServerError {
		log.Error("HTTP request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(errorResponse{Error: "internal error"})
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}
