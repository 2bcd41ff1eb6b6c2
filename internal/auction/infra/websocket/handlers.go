package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/shared/logger"
	"github.com/cristianortiz/dutchAuction/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionWSHandler handles the ws inbound msgs wich are specific for auction module (remember is a bounded context)
type AuctionWSHandler struct {
	auctionService application.AuctionService // application layer dependency
	hub            *websocket.Hub             // shared hub dependency to send msgs
}

// NewAuctionWSHandler creates a new instance of AuctionWSHandler
func NewAuctionWSHandler(auctionService application.AuctionService, hub *websocket.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

// RegisterRoutes mounts GET /ws/auctions/:id on r. Connections live until the
// peer leaves or ctx is cancelled.
func (h *AuctionWSHandler) RegisterRoutes(ctx context.Context, r fiber.Router) {
	g := r.Group("/ws")
	g.Use(func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	g.Get("/auctions/:id", fiberws.New(func(conn *fiberws.Conn) {
		h.serveConn(ctx, conn)
	}))
}

func (h *AuctionWSHandler) serveConn(ctx context.Context, conn *fiberws.Conn) {
	client := websocket.NewClient(h.hub, conn, conn.Params("id"), uuid.NewString())
	if err := h.join(ctx, client); err != nil {
		log.Info("Rejected websocket join",
			zap.String("clientID", client.ID),
			zap.String("auctionID", client.Topic),
			zap.Error(err),
		)
		if data, err := json.Marshal(newErrorMessage(publicError(err))); err == nil {
			_ = conn.WriteMessage(fiberws.TextMessage, data)
		}
		return
	}

	go client.WritePump(ctx)
	// the fiber handler must block for as long as the connection is in use
	client.ReadPump(ctx)
}

// join queues the auction's current quote for client and registers it in the hub.
func (h *AuctionWSHandler) join(ctx context.Context, client *websocket.Client) error {
	auctionID, err := uuid.Parse(client.Topic)
	if err != nil {
		return domain.ErrAuctionNotFound
	}
	quote, err := h.auctionService.GetQuote(ctx, auctionID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ServerQuoteMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
		Payload:     quote,
	})
	if err != nil {
		return err
	}
	client.Enqueue(data)
	h.hub.RegisterClient(client)
	return nil
}

// ListenForMessages starts a go routine that listen the Hub inbound channel for messages and proccess every one of them
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("AuctionWSHandler started listening for inbound messages from hub")
	for {
		select {
		case <-ctx.Done():
			log.Info("AuctionWSHandler stopped listening for inbound messages from hub")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

// processMesssage dispatch the message by this type
func (h *AuctionWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientQuoteRequest:
		h.handleQuoteRequest(ctx, client)
	case MessageTypeClientPurchase:
		h.handlePurchase(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) handleQuoteRequest(ctx context.Context, client *websocket.Client) {
	auctionID, err := uuid.Parse(client.Topic)
	if err != nil {
		h.sendErrorToClient(client, "invalid auction id")
		return
	}
	quote, err := h.auctionService.GetQuote(ctx, auctionID)
	if err != nil {
		h.sendErrorToClient(client, publicError(err))
		return
	}
	h.sendToClient(client, ServerQuoteMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerPriceUpdate},
		Payload:     quote,
	})
}

func (h *AuctionWSHandler) handlePurchase(ctx context.Context, client *websocket.Client, data []byte) {
	var msg ClientPurchaseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendErrorToClient(client, "invalid purchase message format")
		return
	}

	// a client may only buy the auction it is watching
	if msg.Payload.AuctionID.String() != client.Topic {
		h.sendErrorToClient(client, "auction ID mismatch")
		return
	}

	order, err := h.auctionService.Purchase(ctx, application.PurchaseDTO{
		AuctionID:   msg.Payload.AuctionID,
		BuyerID:     msg.Payload.BuyerID,
		BuyerWallet: msg.Payload.BuyerWallet,
		MaxPrice:    msg.Payload.MaxPrice,
	})
	if err != nil {
		h.sendErrorToClient(client, publicError(err))
		return
	}

	info := ServerInfoMessage{BaseMessage: BaseMessage{Type: MessageTypeServerInfo}}
	info.Payload.Message = "purchase confirmed at " + order.Price.String() + " SOL"
	h.sendToClient(client, info)
	h.NotifySold(order)
}

// NotifySold broadcasts server_auction_sold to everyone watching the order's auction.
func (h *AuctionWSHandler) NotifySold(order *domain.Order) {
	msg := ServerAuctionSoldMessage{BaseMessage: BaseMessage{Type: MessageTypeServerAuctionSold}}
	msg.Payload.AuctionID = order.AuctionID
	msg.Payload.OrderID = order.ID
	msg.Payload.BuyerID = order.BuyerID
	msg.Payload.Price = order.Price
	msg.Payload.SoldAt = order.PlacedAt

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal ServerAuctionSoldMessage", zap.Error(err))
		return
	}
	h.hub.Broadcast(order.AuctionID.String(), data)
}

func (h *AuctionWSHandler) sendToClient(client *websocket.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal websocket message", zap.Error(err))
		return
	}
	if !client.Enqueue(data) {
		log.Warn("client left or send channel full, dropping message", zap.String("clientID", client.ID))
	}
}

// sendErrorToClient serializes and sends an error msg to a specific client
func (h *AuctionWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	h.sendToClient(client, newErrorMessage(errorMessage))
}

func newErrorMessage(errorMessage string) ServerErrorMessage {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	return errMsg
}

// publicError hides unexpected failures from clients.
func publicError(err error) string {
	for _, known := range []error{
		domain.ErrAuctionNotFound,
		domain.ErrAuctionNotLive,
		domain.ErrAuctionAlreadySold,
		domain.ErrAuctionAlreadyClosed,
		domain.ErrPriceAboveLimit,
		domain.ErrInvalidWallet,
		domain.ErrWalletMismatch,
		domain.ErrBuyerNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	log.Error("websocket request failed", zap.Error(err))
	return "internal error"
}
