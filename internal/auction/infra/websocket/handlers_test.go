package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/cristianortiz/dutchAuction/internal/auction/domain"
	"github.com/cristianortiz/dutchAuction/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu          sync.Mutex
	quote       *application.AuctionQuoteDTO
	quoteErr    error
	order       *domain.Order
	purchaseErr error
	purchases   []application.PurchaseDTO
}

func (f *fakeService) CreateAuction(context.Context, application.CreateAuctionDTO) (*domain.Auction, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) GetQuote(_ context.Context, id uuid.UUID) (*application.AuctionQuoteDTO, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	q.AuctionID = id
	return &q, nil
}

func (f *fakeService) ListAuctions(context.Context, application.ListAuctionsDTO) ([]*application.AuctionQuoteDTO, error) {
	return nil, nil
}

func (f *fakeService) Purchase(_ context.Context, cmd application.PurchaseDTO) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, cmd)
	if f.purchaseErr != nil {
		return nil, f.purchaseErr
	}
	return f.order, nil
}

func (f *fakeService) CancelAuction(context.Context, uuid.UUID) error { return nil }

type fixture struct {
	svc       *fakeService
	hub       *websocket.Hub
	handler   *AuctionWSHandler
	auctionID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	auctionID := uuid.New()
	svc := &fakeService{
		quote: &application.AuctionQuoteDTO{
			Title:        "Genesis print",
			Phase:        string(domain.PhaseLive),
			CurrentPrice: decimal.RequireFromString("6.5"),
		},
		order: &domain.Order{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BuyerID:   uuid.New(),
			Price:     decimal.RequireFromString("6.5"),
			PlacedAt:  time.Date(2026, 5, 10, 18, 15, 0, 0, time.UTC),
		},
	}
	hub := websocket.NewHub()
	go hub.Run(ctx)

	return &fixture{svc: svc, hub: hub, handler: NewAuctionWSHandler(svc, hub), auctionID: auctionID}
}

// joined registers a connection-less client watching the fixture auction and
// drains its initial state message.
func (f *fixture) joined(t *testing.T) *websocket.Client {
	t.Helper()
	before := f.hub.ClientCount(f.auctionID.String())
	c := websocket.NewClient(f.hub, nil, f.auctionID.String(), uuid.NewString())
	require.NoError(t, f.handler.join(context.Background(), c))
	require.Eventually(t, func() bool {
		return f.hub.ClientCount(f.auctionID.String()) == before+1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, MessageTypeServerInitialState, next(t, c).Type)
	return c
}

type received struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func next(t *testing.T, c *websocket.Client) received {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg received
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return received{}
	}
}

func purchaseMessage(auctionID uuid.UUID) []byte {
	msg := ClientPurchaseMessage{BaseMessage: BaseMessage{Type: MessageTypeClientPurchase}}
	msg.Payload.AuctionID = auctionID
	msg.Payload.BuyerID = uuid.New()
	msg.Payload.BuyerWallet = "11111111111111111111111111111111"
	limit := decimal.RequireFromString("7")
	msg.Payload.MaxPrice = &limit
	data, _ := json.Marshal(msg)
	return data
}

func TestJoin_SendsInitialState(t *testing.T) {
	f := newFixture(t)
	c := websocket.NewClient(f.hub, nil, f.auctionID.String(), "viewer")

	require.NoError(t, f.handler.join(context.Background(), c))

	msg := next(t, c)
	assert.Equal(t, MessageTypeServerInitialState, msg.Type)
	var quote application.AuctionQuoteDTO
	require.NoError(t, json.Unmarshal(msg.Payload, &quote))
	assert.Equal(t, f.auctionID, quote.AuctionID)
	assert.True(t, quote.CurrentPrice.Equal(decimal.RequireFromString("6.5")))
}

func TestJoin_Rejected(t *testing.T) {
	f := newFixture(t)

	err := f.handler.join(context.Background(), websocket.NewClient(f.hub, nil, "not-a-uuid", "viewer"))
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)

	f.svc.quoteErr = domain.ErrAuctionNotFound
	err = f.handler.join(context.Background(), websocket.NewClient(f.hub, nil, uuid.NewString(), "viewer"))
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
	assert.Empty(t, f.hub.Topics())
}

func TestProcessMessage_QuoteRequest(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t)

	f.handler.processMessage(context.Background(), c, []byte(`{"type":"client_quote_request"}`))

	assert.Equal(t, MessageTypeServerPriceUpdate, next(t, c).Type)
}

func TestProcessMessage_Purchase(t *testing.T) {
	f := newFixture(t)
	buyer := f.joined(t)
	watcher := f.joined(t)

	f.handler.processMessage(context.Background(), buyer, purchaseMessage(f.auctionID))

	require.Len(t, f.svc.purchases, 1)
	assert.Equal(t, f.auctionID, f.svc.purchases[0].AuctionID)
	assert.True(t, f.svc.purchases[0].MaxPrice.Equal(decimal.RequireFromString("7")))

	assert.Equal(t, MessageTypeServerInfo, next(t, buyer).Type)
	assert.Equal(t, MessageTypeServerAuctionSold, next(t, buyer).Type)

	sold := next(t, watcher)
	require.Equal(t, MessageTypeServerAuctionSold, sold.Type)
	var payload struct {
		OrderID uuid.UUID       `json:"order_id"`
		Price   decimal.Decimal `json:"price_sol"`
	}
	require.NoError(t, json.Unmarshal(sold.Payload, &payload))
	assert.Equal(t, f.svc.order.ID, payload.OrderID)
	assert.True(t, payload.Price.Equal(decimal.RequireFromString("6.5")))
}

func TestProcessMessage_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        func(f *fixture) []byte
		purchaseErr error
		want        string
	}{
		{"invalid json", func(*fixture) []byte { return []byte(`{`) }, nil, "invalid message format"},
		{"unknown type", func(*fixture) []byte { return []byte(`{"type":"client_bid"}`) }, nil, "unknown message type"},
		{"other auction", func(*fixture) []byte { return purchaseMessage(uuid.New()) }, nil, "auction ID mismatch"},
		{"already sold", func(f *fixture) []byte { return purchaseMessage(f.auctionID) }, domain.ErrAuctionAlreadySold, domain.ErrAuctionAlreadySold.Error()},
		{"unexpected failure", func(f *fixture) []byte { return purchaseMessage(f.auctionID) }, errors.New("connection reset"), "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.svc.purchaseErr = tt.purchaseErr
			c := f.joined(t)

			f.handler.processMessage(context.Background(), c, tt.data(f))

			msg := next(t, c)
			require.Equal(t, MessageTypeServerError, msg.Type)
			var payload struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(msg.Payload, &payload))
			assert.Equal(t, tt.want, payload.Error)
		})
	}
}

func TestProcessMessage_ReplyAfterClientLeft(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t)
	f.hub.UnregisterClient(c)
	require.Eventually(t, func() bool {
		return f.hub.ClientCount(f.auctionID.String()) == 0
	}, time.Second, 5*time.Millisecond)

	require.NotPanics(t, func() {
		f.handler.processMessage(context.Background(), c, []byte(`{"type":"client_quote_request"}`))
		f.handler.processMessage(context.Background(), c, purchaseMessage(f.auctionID))
		f.handler.processMessage(context.Background(), c, []byte(`{`))
	})
	assert.Len(t, f.svc.purchases, 1)
}

func TestListenForMessages_DispatchesInbound(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.handler.ListenForMessages(ctx)

	f.hub.InboundMessages <- &websocket.ClientMessage{Client: c, Data: []byte(`{"type":"client_quote_request"}`)}

	assert.Equal(t, MessageTypeServerPriceUpdate, next(t, c).Type)
}

func TestRegisterRoutes_RequiresUpgrade(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	f.handler.RegisterRoutes(context.Background(), app)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/auctions/"+f.auctionID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestPriceBroadcaster_Tick(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t)
	b := NewPriceBroadcaster(f.svc, f.hub, time.Hour)

	b.tick(context.Background())

	msg := next(t, c)
	require.Equal(t, MessageTypeServerPriceUpdate, msg.Type)
	var quote application.AuctionQuoteDTO
	require.NoError(t, json.Unmarshal(msg.Payload, &quote))
	assert.Equal(t, f.auctionID, quote.AuctionID)
}

func TestPriceBroadcaster_SkipsFailedQuotes(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t)
	f.svc.quoteErr = domain.ErrAuctionNotFound
	b := NewPriceBroadcaster(f.svc, f.hub, time.Hour)

	b.tick(context.Background())

	select {
	case data := <-c.Send:
		t.Fatalf("unexpected message %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}
