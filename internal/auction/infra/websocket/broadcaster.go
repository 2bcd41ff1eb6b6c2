package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/cristianortiz/dutchAuction/internal/shared/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PriceBroadcaster pushes server_price_update to every auction that has viewers.
// The pushed prices are for display; purchases are always priced on the server.
type PriceBroadcaster struct {
	auctionService application.AuctionService
	hub            *websocket.Hub
	interval       time.Duration
}

func NewPriceBroadcaster(auctionService application.AuctionService, hub *websocket.Hub, interval time.Duration) *PriceBroadcaster {
	return &PriceBroadcaster{
		auctionService: auctionService,
		hub:            hub,
		interval:       interval,
	}
}

// Run ticks until ctx is cancelled.
func (b *PriceBroadcaster) Run(ctx context.Context) {
	log.Info("PriceBroadcaster started", zap.Duration("interval", b.interval))
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("PriceBroadcaster stopped")
			return
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

func (b *PriceBroadcaster) tick(ctx context.Context) {
	for _, topic := range b.hub.Topics() {
		auctionID, err := uuid.Parse(topic)
		if err != nil {
			log.Warn("Skipping non auction topic", zap.String("topic", topic))
			continue
		}
		quote, err := b.auctionService.GetQuote(ctx, auctionID)
		if err != nil {
			log.Warn("Failed to quote auction for broadcast", zap.String("auctionID", topic), zap.Error(err))
			continue
		}
		data, err := json.Marshal(ServerQuoteMessage{
			BaseMessage: BaseMessage{Type: MessageTypeServerPriceUpdate},
			Payload:     quote,
		})
		if err != nil {
			log.Error("failed to marshal price update", zap.Error(err))
			continue
		}
		b.hub.Broadcast(topic, data)
	}
}
