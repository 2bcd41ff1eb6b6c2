package domain

import "errors"

var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrAuctionNotLive       = errors.New("auction is not live")
	ErrAuctionAlreadySold   = errors.New("auction is already sold")
	ErrAuctionAlreadyClosed = errors.New("auction is already sold or cancelled")
	ErrInvalidAuction       = errors.New("invalid auction")
	ErrPriceAboveLimit      = errors.New("current price is above the buyer's limit")
	ErrInvalidWallet        = errors.New("invalid buyer wallet address")
	ErrBuyerNotFound        = errors.New("buyer not found")
	ErrWalletMismatch       = errors.New("wallet does not belong to the buyer")
	ErrOrderNotFound        = errors.New("order not found")
)
