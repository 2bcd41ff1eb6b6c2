package websocket

import (
	"time"

	"github.com/cristianortiz/dutchAuction/internal/auction/application"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType defines ws type message
type MessageType string

const (
	MessageTypeClientQuoteRequest MessageType = "client_quote_request" // client msg asking for a fresh price
	MessageTypeClientPurchase     MessageType = "client_purchase"      // client msg to buy at the current price
	MessageTypeServerInitialState MessageType = "server_initial_state" // server msg with the quote sent on join
	MessageTypeServerPriceUpdate  MessageType = "server_price_update"  // server msg with a display quote
	MessageTypeServerAuctionSold  MessageType = "server_auction_sold"  // server msg when the item was bought
	MessageTypeServerError        MessageType = "server_error"         // server msg indicating error
	MessageTypeServerInfo         MessageType = "server_info"          // server msg with general info
)

// BaseMessage is base struct for all the WS messages, includes a Type field for identify the message type
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientPurchaseMessage is the DTO for a purchase sent by the client. The price
// is never taken from the client; max_price_sol only caps what it will pay.
type ClientPurchaseMessage struct {
	BaseMessage
	Payload struct {
		AuctionID   uuid.UUID        `json:"auction_id"`
		BuyerID     uuid.UUID        `json:"buyer_id"`
		BuyerWallet string           `json:"buyer_wallet"`
		MaxPrice    *decimal.Decimal `json:"max_price_sol,omitempty"`
	} `json:"payload"`
}

// ServerQuoteMessage carries a quote; used for both server_initial_state and
// server_price_update.
type ServerQuoteMessage struct {
	BaseMessage
	Payload *application.AuctionQuoteDTO `json:"payload"`
}

// ServerAuctionSoldMessage is broadcast to the auction group once an order settles.
type ServerAuctionSoldMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID       `json:"auction_id"`
		OrderID   uuid.UUID       `json:"order_id"`
		BuyerID   uuid.UUID       `json:"buyer_id"`
		Price     decimal.Decimal `json:"price_sol"`
		SoldAt    time.Time       `json:"sold_at"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}

// ServerInfoMessage is a general purpose notice for a single client.
type ServerInfoMessage struct {
	BaseMessage
	Payload struct {
		Message string `json:"message"`
	} `json:"payload"`
}
